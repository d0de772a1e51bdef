package config

import (
	"errors"
	"path"
)

// 平衡数据文件名（相对数据目录）
const (
	GameConfigFile      = "game.yaml"
	EnemyStatsFile      = "enemy_stats.yaml"
	StructureStatsFile  = "structure_stats.yaml"
	WaveRulesFile       = "wave_rules.yaml"
	ModifiersConfigFile = "modifiers.yaml"
)

// Balance 一局所需的全部平衡数据
type Balance struct {
	Game       *GameConfig
	Enemies    *EnemyStatsConfig
	Structures *StructureStatsConfig
	Waves      *WaveRulesConfig
	Modifiers  *ModifiersConfig
}

// DefaultBalance 返回全部使用内置默认值的平衡数据
func DefaultBalance() *Balance {
	return &Balance{
		Game:       DefaultGameConfig(),
		Enemies:    DefaultEnemyStats(),
		Structures: DefaultStructureStats(),
		Waves:      DefaultWaveRules(),
		Modifiers:  DefaultModifiers(),
	}
}

// LoadBalance 从数据目录加载全部平衡数据
//
// 参数：
//
//	dir - 数据目录，通常为 "data"（优先读取嵌入文件）
//
// 返回：
//
//	*Balance - 始终非 nil；加载失败的文件使用内置默认值
//	error - 所有加载失败的合并错误，全部成功时为 nil
func LoadBalance(dir string) (*Balance, error) {
	b := DefaultBalance()
	var errs []error

	if cfg, err := LoadGameConfig(path.Join(dir, GameConfigFile)); err != nil {
		errs = append(errs, err)
	} else {
		b.Game = cfg
	}
	if cfg, err := LoadEnemyStats(path.Join(dir, EnemyStatsFile)); err != nil {
		errs = append(errs, err)
	} else {
		b.Enemies = cfg
	}
	if cfg, err := LoadStructureStats(path.Join(dir, StructureStatsFile)); err != nil {
		errs = append(errs, err)
	} else {
		b.Structures = cfg
	}
	if cfg, err := LoadWaveRules(path.Join(dir, WaveRulesFile)); err != nil {
		errs = append(errs, err)
	} else {
		b.Waves = cfg
	}
	if cfg, err := LoadModifiers(path.Join(dir, ModifiersConfigFile)); err != nil {
		errs = append(errs, err)
	} else {
		b.Modifiers = cfg
	}

	return b, errors.Join(errs...)
}
