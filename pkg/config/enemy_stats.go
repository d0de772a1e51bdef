package config

import (
	"fmt"

	"github.com/gonewx/mazetd/pkg/embedded"
	"github.com/gonewx/mazetd/pkg/types"
	"gopkg.in/yaml.v3"
)

// EnemyStats 单个敌人类型的基础属性
type EnemyStats struct {
	MaxHP       int     `yaml:"maxHp"`       // 基础最大生命值
	Speed       float64 `yaml:"speed"`       // 基础移动速度（像素/秒）
	ResistPhys  float64 `yaml:"resistPhys"`  // 物理抗性 0~1
	ResistMagic float64 `yaml:"resistMagic"` // 魔法抗性 0~1
	Size        float64 `yaml:"size"`        // 显示半径（像素）
	Reward      int     `yaml:"reward"`      // 击杀奖励金币
}

// AbilityConfig 敌人技能参数
type AbilityConfig struct {
	SlowDecayRate          float64 `yaml:"slowDecayRate"`          // 减速层数每秒衰减量
	SlowCap                float64 `yaml:"slowCap"`                // 减速层数上限
	SlowDuration           float64 `yaml:"slowDuration"`           // 减速效果持续时间（每次叠加刷新）
	SlowPerStack           float64 `yaml:"slowPerStack"`           // 每层减速降低的移动倍率
	MinSlowMultiplier      float64 `yaml:"minSlowMultiplier"`      // 移动倍率下限
	FreezeThreshold        float64 `yaml:"freezeThreshold"`        // 转为冰冻所需的减速层数
	FreezeDuration         float64 `yaml:"freezeDuration"`         // 基础冰冻时长
	FreezeMinFraction      float64 `yaml:"freezeMinFraction"`      // 冰冻抗性作用后的最短时长比例
	FreezeImmunityDuration float64 `yaml:"freezeImmunityDuration"` // 冰冻结束后的免疫时长
	BurnDamagePerStrength  float64 `yaml:"burnDamagePerStrength"`  // 燃烧每点强度每秒伤害
	BleedDamagePerStrength float64 `yaml:"bleedDamagePerStrength"` // 流血每点强度每秒伤害

	FighterShieldFraction float64 `yaml:"fighterShieldFraction"` // 战士护盾占最大生命比例
	FighterShieldTrigger  float64 `yaml:"fighterShieldTrigger"`  // 战士护盾触发血量比例

	TankFortifyTrigger float64 `yaml:"tankFortifyTrigger"` // 坦克强化触发血量比例
	TankResistCap      float64 `yaml:"tankResistCap"`      // 坦克强化后抗性上限

	MageBlockCharges int `yaml:"mageBlockCharges"` // 法师格挡次数

	AssassinDodgeChance   float64 `yaml:"assassinDodgeChance"`   // 刺客基础闪避率
	AssassinDodgeDecay    float64 `yaml:"assassinDodgeDecay"`    // 每次闪避成功后降低的闪避率
	AssassinDodgeFloor    float64 `yaml:"assassinDodgeFloor"`    // 闪避率下限
	AssassinTrigger       float64 `yaml:"assassinTrigger"`       // 刺客紧急行为触发血量比例
	AssassinBoostDodge    float64 `yaml:"assassinBoostDodge"`    // 紧急加速后的基础闪避率
	AssassinBoostSpeed    float64 `yaml:"assassinBoostSpeed"`    // 紧急加速速度倍率
	HealerInterval        float64 `yaml:"healerInterval"`        // 治疗间隔（秒）
	HealerRadius          float64 `yaml:"healerRadius"`          // 链式治疗跳跃半径
	HealerFraction        float64 `yaml:"healerFraction"`        // 每次治疗目标最大生命的比例
	HealerChainTargets    int     `yaml:"healerChainTargets"`    // 每次链式治疗的目标数
	MinotaurStunInterval  float64 `yaml:"minotaurStunInterval"`  // 牛头怪眩晕脉冲间隔
	MinotaurStunRadius    float64 `yaml:"minotaurStunRadius"`    // 眩晕脉冲半径
	MinotaurStunDuration  float64 `yaml:"minotaurStunDuration"`  // 防御塔被眩晕时长
	MinotaurPhaseTrigger  float64 `yaml:"minotaurPhaseTrigger"`  // 二阶段触发血量比例
	MinotaurPhaseSpeed    float64 `yaml:"minotaurPhaseSpeed"`    // 二阶段速度倍率
	DemonLaneSwapTrigger  float64 `yaml:"demonLaneSwapTrigger"`  // 恶魔换路触发血量比例
	DemonMinionTrigger    float64 `yaml:"demonMinionTrigger"`    // 恶魔召唤触发血量比例
	DemonMinionCount      int     `yaml:"demonMinionCount"`      // 召唤护卫数量
	DemonTeleportTrigger  float64 `yaml:"demonTeleportTrigger"`  // 恶魔瞬移触发血量比例
	DemonTeleportAdvance  int     `yaml:"demonTeleportAdvance"`  // 瞬移最多前进的路径点数
	DemonTeleportGoalSafe int     `yaml:"demonTeleportGoalSafe"` // 瞬移后距终点至少保留的路径点数
}

// EnemyStatsConfig 敌人属性配置文件结构
type EnemyStatsConfig struct {
	Enemies           map[string]EnemyStats `yaml:"enemies"`           // 敌人类型到属性的映射
	ScaleWaveInterval int                   `yaml:"scaleWaveInterval"` // 每隔多少波提升一次强度
	ScaleIncrement    float64               `yaml:"scaleIncrement"`    // 每次提升的比例
	Abilities         AbilityConfig         `yaml:"abilities"`         // 技能参数
}

// LoadEnemyStats 从 YAML 文件加载敌人属性配置
// 参数：
//
//	filepath - 配置文件路径（"data/" 前缀读取嵌入数据，其余读取磁盘）
//
// 返回：
//
//	*EnemyStatsConfig - 解析后的配置对象
//	error - 如果文件读取或解析失败，返回错误信息
func LoadEnemyStats(filepath string) (*EnemyStatsConfig, error) {
	data, err := embedded.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read enemy stats file %s: %w", filepath, err)
	}

	// 以默认值为底，YAML 中未出现的字段保持默认
	config := DefaultEnemyStats()
	config.Enemies = nil
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse enemy stats YAML from %s: %w", filepath, err)
	}

	if err := validateEnemyStats(config); err != nil {
		return nil, fmt.Errorf("invalid enemy stats in %s: %w", filepath, err)
	}

	return config, nil
}

// validateEnemyStats 验证敌人属性配置的完整性和合法性
func validateEnemyStats(config *EnemyStatsConfig) error {
	if len(config.Enemies) == 0 {
		return fmt.Errorf("at least one enemy type is required")
	}

	for enemyType, stats := range config.Enemies {
		if !types.EnemyType(enemyType).IsValid() {
			return fmt.Errorf("enemy %s: unknown enemy type", enemyType)
		}
		if stats.MaxHP <= 0 {
			return fmt.Errorf("enemy %s: maxHp must be positive, got %d", enemyType, stats.MaxHP)
		}
		if stats.Speed <= 0 {
			return fmt.Errorf("enemy %s: speed must be positive, got %.2f", enemyType, stats.Speed)
		}
		if stats.ResistPhys < 0 || stats.ResistPhys >= 1 {
			return fmt.Errorf("enemy %s: resistPhys must be in [0, 1), got %.2f", enemyType, stats.ResistPhys)
		}
		if stats.ResistMagic < 0 || stats.ResistMagic >= 1 {
			return fmt.Errorf("enemy %s: resistMagic must be in [0, 1), got %.2f", enemyType, stats.ResistMagic)
		}
		if stats.Reward < 0 {
			return fmt.Errorf("enemy %s: reward cannot be negative, got %d", enemyType, stats.Reward)
		}
	}

	if config.ScaleWaveInterval < 0 {
		return fmt.Errorf("scaleWaveInterval cannot be negative, got %d", config.ScaleWaveInterval)
	}
	if config.Abilities.FreezeThreshold <= 0 {
		return fmt.Errorf("abilities.freezeThreshold must be positive, got %.2f", config.Abilities.FreezeThreshold)
	}
	if config.Abilities.SlowCap < config.Abilities.FreezeThreshold {
		return fmt.Errorf("abilities.slowCap (%.2f) must not be below freezeThreshold (%.2f)",
			config.Abilities.SlowCap, config.Abilities.FreezeThreshold)
	}

	return nil
}

// GetEnemyStats 获取指定敌人类型的属性
// 如果类型不存在，返回 nil 和 false
func (c *EnemyStatsConfig) GetEnemyStats(enemyType types.EnemyType) (*EnemyStats, bool) {
	stats, ok := c.Enemies[string(enemyType)]
	if !ok {
		return nil, false
	}
	return &stats, true
}

// GetReward 获取指定敌人类型的基础奖励，类型不存在时返回 0
func (c *EnemyStatsConfig) GetReward(enemyType types.EnemyType) int {
	if stats, ok := c.Enemies[string(enemyType)]; ok {
		return stats.Reward
	}
	return 0
}

// DefaultAbilities 返回内置的技能参数
func DefaultAbilities() AbilityConfig {
	return AbilityConfig{
		SlowDecayRate:          0.3,
		SlowCap:                12,
		SlowDuration:           5.0,
		SlowPerStack:           0.08,
		MinSlowMultiplier:      0.1,
		FreezeThreshold:        10,
		FreezeDuration:         3.0,
		FreezeMinFraction:      0.2,
		FreezeImmunityDuration: 2.0,
		BurnDamagePerStrength:  10,
		BleedDamagePerStrength: 8,

		FighterShieldFraction: 0.3,
		FighterShieldTrigger:  0.5,

		TankFortifyTrigger: 0.3,
		TankResistCap:      0.75,

		MageBlockCharges: 3,

		AssassinDodgeChance:   0.10,
		AssassinDodgeDecay:    0.01,
		AssassinDodgeFloor:    0.01,
		AssassinTrigger:       0.3,
		AssassinBoostDodge:    0.45,
		AssassinBoostSpeed:    1.5,
		HealerInterval:        1.0,
		HealerRadius:          120,
		HealerFraction:        0.05,
		HealerChainTargets:    3,
		MinotaurStunInterval:  8.0,
		MinotaurStunRadius:    110,
		MinotaurStunDuration:  1.5,
		MinotaurPhaseTrigger:  0.3,
		MinotaurPhaseSpeed:    3.2,
		DemonLaneSwapTrigger:  0.75,
		DemonMinionTrigger:    0.5,
		DemonMinionCount:      4,
		DemonTeleportTrigger:  0.25,
		DemonTeleportAdvance:  8,
		DemonTeleportGoalSafe: 4,
	}
}

// DefaultEnemyStats 返回内置的敌人属性配置
func DefaultEnemyStats() *EnemyStatsConfig {
	return &EnemyStatsConfig{
		Enemies: map[string]EnemyStats{
			"fighter":       {MaxHP: 80, Speed: 56, ResistPhys: 0.10, ResistMagic: 0, Size: 14, Reward: 6},
			"tank":          {MaxHP: 230, Speed: 28, ResistPhys: 0.30, ResistMagic: 0.12, Size: 20, Reward: 18},
			"mage":          {MaxHP: 60, Speed: 44, ResistPhys: 0, ResistMagic: 0.10, Size: 12, Reward: 8},
			"assassin":      {MaxHP: 40, Speed: 88, ResistPhys: 0, ResistMagic: 0, Size: 10, Reward: 10},
			"healer":        {MaxHP: 70, Speed: 40, ResistPhys: 0.05, ResistMagic: 0.05, Size: 13, Reward: 12},
			"swarm":         {MaxHP: 24, Speed: 76, ResistPhys: 0, ResistMagic: 0, Size: 8, Reward: 3},
			"minotaur_boss": {MaxHP: 420, Speed: 28, ResistPhys: 0.22, ResistMagic: 0.12, Size: 28, Reward: 130},
			"demon_boss":    {MaxHP: 820, Speed: 20, ResistPhys: 0.26, ResistMagic: 0.30, Size: 40, Reward: 260},
		},
		ScaleWaveInterval: 5,
		ScaleIncrement:    0.10,
		Abilities:         DefaultAbilities(),
	}
}
