package config

import (
	"fmt"

	"github.com/gonewx/mazetd/pkg/embedded"
	"github.com/gonewx/mazetd/pkg/types"
	"gopkg.in/yaml.v3"
)

// WaveProgression 每波敌人数量曲线
type WaveProgression struct {
	EarlyEnd   int     `yaml:"earlyEnd"`   // 前期最后一波
	MidEnd     int     `yaml:"midEnd"`     // 中期最后一波
	EarlyBase  int     `yaml:"earlyBase"`  // 前期基础数量（再加波次）
	MidBase    int     `yaml:"midBase"`    // 中期基础数量
	LateBase   int     `yaml:"lateBase"`   // 后期基础数量
	MidGrowth  float64 `yaml:"midGrowth"`  // 中期每波增长
	LateGrowth float64 `yaml:"lateGrowth"` // 后期每波增长
}

// PoolBonus 从指定波次起追加到敌人池的类型
type PoolBonus struct {
	FromWave int    `yaml:"fromWave"`
	Type     string `yaml:"type"`
}

// WavePhase 一个波次阶段的生成模板
type WavePhase struct {
	MaxWave       int         `yaml:"maxWave"`       // 阶段最后一波，0 表示无上限
	Pool          []string    `yaml:"pool"`          // 敌人池（重复项即权重）
	Bonus         []PoolBonus `yaml:"bonus"`         // 按波次追加的类型
	SwarmChance   float64     `yaml:"swarmChance"`   // 虫群出现概率
	SwarmFromWave int         `yaml:"swarmFromWave"` // 本阶段允许虫群的最早波次
	SpawnInterval float64     `yaml:"spawnInterval"` // 生成间隔（秒）
}

// FreezeResistRules 按波次计算的冰冻抗性
type FreezeResistRules struct {
	EarlyEnd  int     `yaml:"earlyEnd"`
	MidEnd    int     `yaml:"midEnd"`
	MidRate   float64 `yaml:"midRate"`
	MidCap    float64 `yaml:"midCap"`
	LateRate  float64 `yaml:"lateRate"`
	LateCap   float64 `yaml:"lateCap"`
	BossBonus float64 `yaml:"bossBonus"`
	BossCap   float64 `yaml:"bossCap"`
}

// SwarmRules 虫群生成与奖励衰减
type SwarmRules struct {
	BurstSize    int     `yaml:"burstSize"`    // 一次成批生成的数量
	MinRemaining int     `yaml:"minRemaining"` // 剩余数量不少于此值时才允许虫群
	FreeCount    int     `yaml:"freeCount"`    // 不衰减奖励的前 N 只
	RewardDecay  float64 `yaml:"rewardDecay"`  // 之后每只的奖励衰减系数
	RewardFloor  float64 `yaml:"rewardFloor"`  // 奖励倍率下限
}

// WaveRulesConfig 波次规则配置文件结构
type WaveRulesConfig struct {
	Progression       WaveProgression   `yaml:"progression"`
	Phases            []WavePhase       `yaml:"phases"`
	Swarm             SwarmRules        `yaml:"swarm"`
	FreezeResist      FreezeResistRules `yaml:"freezeResist"`
	BossWaveInterval  int               `yaml:"bossWaveInterval"`  // 每隔多少波出现 Boss
	DemonWaveInterval int               `yaml:"demonWaveInterval"` // 每隔多少波 Boss 为恶魔
	ExpansionInterval int               `yaml:"expansionInterval"` // 每隔多少波扩展一条新路
}

// LoadWaveRules 从 YAML 文件加载波次规则
func LoadWaveRules(filepath string) (*WaveRulesConfig, error) {
	data, err := embedded.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read wave rules file %s: %w", filepath, err)
	}

	var config WaveRulesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse wave rules YAML from %s: %w", filepath, err)
	}

	if err := validateWaveRules(&config); err != nil {
		return nil, fmt.Errorf("invalid wave rules in %s: %w", filepath, err)
	}

	return &config, nil
}

// validateWaveRules 验证波次规则
func validateWaveRules(config *WaveRulesConfig) error {
	p := config.Progression
	if p.EarlyEnd < 1 || p.MidEnd <= p.EarlyEnd {
		return fmt.Errorf("progression: require 1 <= earlyEnd < midEnd, got %d / %d", p.EarlyEnd, p.MidEnd)
	}

	if len(config.Phases) == 0 {
		return fmt.Errorf("at least one wave phase is required")
	}
	prevMax := 0
	for i, phase := range config.Phases {
		last := i == len(config.Phases)-1
		if !last && phase.MaxWave <= prevMax {
			return fmt.Errorf("phase %d: maxWave must increase, got %d after %d", i, phase.MaxWave, prevMax)
		}
		if last && phase.MaxWave != 0 {
			return fmt.Errorf("phase %d: last phase must be unbounded (maxWave 0), got %d", i, phase.MaxWave)
		}
		if len(phase.Pool) == 0 {
			return fmt.Errorf("phase %d: pool cannot be empty", i)
		}
		for _, name := range phase.Pool {
			if !types.EnemyType(name).IsValid() {
				return fmt.Errorf("phase %d: unknown enemy type %q in pool", i, name)
			}
		}
		for _, bonus := range phase.Bonus {
			if !types.EnemyType(bonus.Type).IsValid() {
				return fmt.Errorf("phase %d: unknown enemy type %q in bonus", i, bonus.Type)
			}
		}
		if phase.SwarmChance < 0 || phase.SwarmChance > 1 {
			return fmt.Errorf("phase %d: swarmChance must be in [0, 1], got %.2f", i, phase.SwarmChance)
		}
		if phase.SpawnInterval <= 0 {
			return fmt.Errorf("phase %d: spawnInterval must be positive, got %.2f", i, phase.SpawnInterval)
		}
		prevMax = phase.MaxWave
	}

	if config.Swarm.BurstSize < 1 {
		return fmt.Errorf("swarm.burstSize must be at least 1, got %d", config.Swarm.BurstSize)
	}
	if config.BossWaveInterval < 1 || config.DemonWaveInterval < 1 || config.ExpansionInterval < 1 {
		return fmt.Errorf("boss/demon/expansion intervals must be at least 1")
	}
	return nil
}

// PhaseFor 返回指定波次所属的阶段模板
func (c *WaveRulesConfig) PhaseFor(wave int) *WavePhase {
	for i := range c.Phases {
		if c.Phases[i].MaxWave == 0 || wave <= c.Phases[i].MaxWave {
			return &c.Phases[i]
		}
	}
	return &c.Phases[len(c.Phases)-1]
}

// DefaultWaveRules 返回内置的波次规则
func DefaultWaveRules() *WaveRulesConfig {
	return &WaveRulesConfig{
		Progression: WaveProgression{
			EarlyEnd:   5,
			MidEnd:     14,
			EarlyBase:  3,
			MidBase:    8,
			LateBase:   20,
			MidGrowth:  1.4,
			LateGrowth: 1.8,
		},
		Phases: []WavePhase{
			{
				MaxWave:       5,
				Pool:          []string{"fighter", "fighter", "fighter", "mage", "fighter", "assassin"},
				SwarmChance:   0.08,
				SwarmFromWave: 5,
				SpawnInterval: 1.8,
			},
			{
				MaxWave:       14,
				Pool:          []string{"fighter", "fighter", "mage", "assassin", "tank", "swarm"},
				Bonus:         []PoolBonus{{FromWave: 12, Type: "healer"}},
				SwarmChance:   0.12,
				SpawnInterval: 1.5,
			},
			{
				MaxWave:       0,
				Pool:          []string{"fighter", "tank", "mage", "assassin", "healer", "swarm"},
				Bonus:         []PoolBonus{{FromWave: 20, Type: "tank"}},
				SwarmChance:   0.18,
				SpawnInterval: 1.25,
			},
		},
		Swarm: SwarmRules{
			BurstSize:    5,
			MinRemaining: 10,
			FreeCount:    6,
			RewardDecay:  0.9,
			RewardFloor:  0.6,
		},
		FreezeResist: FreezeResistRules{
			EarlyEnd:  5,
			MidEnd:    15,
			MidRate:   0.03,
			MidCap:    0.4,
			LateRate:  0.02,
			LateCap:   0.65,
			BossBonus: 0.15,
			BossCap:   0.85,
		},
		BossWaveInterval:  5,
		DemonWaveInterval: 10,
		ExpansionInterval: 5,
	}
}
