package config

import (
	"fmt"

	"github.com/gonewx/mazetd/pkg/embedded"
	"github.com/gonewx/mazetd/pkg/types"
	"gopkg.in/yaml.v3"
)

// UpgradeTier 单个升级等级的名称与价格
type UpgradeTier struct {
	Name string `yaml:"name"`
	Cost int    `yaml:"cost"`
}

// UpgradePaths 两条互斥的升级路线，每条两级
type UpgradePaths struct {
	Path1 []UpgradeTier `yaml:"path1"`
	Path2 []UpgradeTier `yaml:"path2"`
}

// Tier 获取指定路线和等级（从 1 开始）的升级信息
func (u UpgradePaths) Tier(path types.UpgradePath, tier int) (UpgradeTier, bool) {
	var tiers []UpgradeTier
	switch path {
	case types.Path1:
		tiers = u.Path1
	case types.Path2:
		tiers = u.Path2
	default:
		return UpgradeTier{}, false
	}
	if tier < 1 || tier > len(tiers) {
		return UpgradeTier{}, false
	}
	return tiers[tier-1], true
}

// TowerStats 防御塔基础属性
type TowerStats struct {
	Cost           int          `yaml:"cost"`
	Damage         float64      `yaml:"damage"`
	Range          float64      `yaml:"range"`
	AttackInterval float64      `yaml:"attackInterval"`
	FreezeDelay    float64      `yaml:"freezeDelay"` // 仅冰塔：激光冰冻脉冲间隔
	Upgrades       UpgradePaths `yaml:"upgrades"`
}

// TrapStats 陷阱基础属性
type TrapStats struct {
	Cost       int          `yaml:"cost"`
	DPS        float64      `yaml:"dps"`        // 火焰陷阱每秒伤害
	AuraRadius int          `yaml:"auraRadius"` // 火焰陷阱光环半径（切比雪夫距离，格）
	Damage     float64      `yaml:"damage"`     // 尖刺陷阱单次伤害
	Interval   float64      `yaml:"interval"`   // 尖刺陷阱触发间隔
	Upgrades   UpgradePaths `yaml:"upgrades"`
}

// SentinelStats 哨兵基础属性
type SentinelStats struct {
	Cost           int          `yaml:"cost"`
	Duration       float64      `yaml:"duration"`       // 屏障持续时间
	Cooldown       float64      `yaml:"cooldown"`       // 屏障冷却时间
	Range          float64      `yaml:"range"`          // 探测范围
	BarrierSlow    float64      `yaml:"barrierSlow"`    // 屏障每帧施加的减速层数
	BarrierPush    float64      `yaml:"barrierPush"`    // 屏障每帧推开距离（像素）
	ReflectDPS     float64      `yaml:"reflectDps"`     // 反伤每秒伤害
	OverloadDamage float64      `yaml:"overloadDamage"` // 过载爆发伤害
	OverloadRadius float64      `yaml:"overloadRadius"` // 过载爆发半径
	PulseForce     float64      `yaml:"pulseForce"`     // 脉冲击退距离
	PulseRadius    float64      `yaml:"pulseRadius"`    // 脉冲半径
	PulseInterval  float64      `yaml:"pulseInterval"`  // 脉冲间隔
	Upgrades       UpgradePaths `yaml:"upgrades"`
}

// StructureStatsConfig 建筑属性配置文件结构
type StructureStatsConfig struct {
	ProjectileSpeed float64               `yaml:"projectileSpeed"` // 投射物飞行速度（像素/秒）
	Towers          map[string]TowerStats `yaml:"towers"`
	Traps           map[string]TrapStats  `yaml:"traps"`
	Sentinel        SentinelStats         `yaml:"sentinel"`
}

// LoadStructureStats 从 YAML 文件加载建筑属性配置
func LoadStructureStats(filepath string) (*StructureStatsConfig, error) {
	data, err := embedded.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read structure stats file %s: %w", filepath, err)
	}

	var config StructureStatsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse structure stats YAML from %s: %w", filepath, err)
	}

	if err := validateStructureStats(&config); err != nil {
		return nil, fmt.Errorf("invalid structure stats in %s: %w", filepath, err)
	}

	return &config, nil
}

// validateUpgradePaths 验证升级路线：每条路线恰好两级且价格为正
func validateUpgradePaths(owner string, paths UpgradePaths) error {
	for i, tiers := range [][]UpgradeTier{paths.Path1, paths.Path2} {
		if len(tiers) != types.MaxUpgradeTier {
			return fmt.Errorf("%s: path%d must have exactly %d tiers, got %d", owner, i+1, types.MaxUpgradeTier, len(tiers))
		}
		for j, tier := range tiers {
			if tier.Cost <= 0 {
				return fmt.Errorf("%s: path%d tier %d cost must be positive, got %d", owner, i+1, j+1, tier.Cost)
			}
		}
	}
	return nil
}

// validateStructureStats 验证建筑属性配置
func validateStructureStats(config *StructureStatsConfig) error {
	if config.ProjectileSpeed <= 0 {
		return fmt.Errorf("projectileSpeed must be positive, got %.2f", config.ProjectileSpeed)
	}

	for _, towerType := range types.AllTowerTypes {
		stats, ok := config.Towers[string(towerType)]
		if !ok {
			return fmt.Errorf("tower %s is missing", towerType)
		}
		if stats.Cost <= 0 {
			return fmt.Errorf("tower %s: cost must be positive, got %d", towerType, stats.Cost)
		}
		if stats.Range <= 0 {
			return fmt.Errorf("tower %s: range must be positive, got %.2f", towerType, stats.Range)
		}
		if towerType == types.TowerIce {
			if stats.FreezeDelay <= 0 {
				return fmt.Errorf("tower %s: freezeDelay must be positive, got %.2f", towerType, stats.FreezeDelay)
			}
		} else if stats.AttackInterval <= 0 {
			return fmt.Errorf("tower %s: attackInterval must be positive, got %.2f", towerType, stats.AttackInterval)
		}
		if err := validateUpgradePaths("tower "+string(towerType), stats.Upgrades); err != nil {
			return err
		}
	}

	for _, trapType := range types.AllTrapTypes {
		stats, ok := config.Traps[string(trapType)]
		if !ok {
			return fmt.Errorf("trap %s is missing", trapType)
		}
		if stats.Cost <= 0 {
			return fmt.Errorf("trap %s: cost must be positive, got %d", trapType, stats.Cost)
		}
		if trapType == types.TrapSpikes && stats.Interval <= 0 {
			return fmt.Errorf("trap %s: interval must be positive, got %.2f", trapType, stats.Interval)
		}
		if err := validateUpgradePaths("trap "+string(trapType), stats.Upgrades); err != nil {
			return err
		}
	}

	if config.Sentinel.Cost <= 0 {
		return fmt.Errorf("sentinel: cost must be positive, got %d", config.Sentinel.Cost)
	}
	if config.Sentinel.Duration <= 0 || config.Sentinel.Cooldown < 0 {
		return fmt.Errorf("sentinel: invalid duration %.2f / cooldown %.2f", config.Sentinel.Duration, config.Sentinel.Cooldown)
	}
	return validateUpgradePaths("sentinel", config.Sentinel.Upgrades)
}

// GetTowerStats 获取防御塔属性
func (c *StructureStatsConfig) GetTowerStats(towerType types.TowerType) (*TowerStats, bool) {
	stats, ok := c.Towers[string(towerType)]
	if !ok {
		return nil, false
	}
	return &stats, true
}

// GetTrapStats 获取陷阱属性
func (c *StructureStatsConfig) GetTrapStats(trapType types.TrapType) (*TrapStats, bool) {
	stats, ok := c.Traps[string(trapType)]
	if !ok {
		return nil, false
	}
	return &stats, true
}

// TowerCost 获取防御塔建造价格，未知类型返回 0
func (c *StructureStatsConfig) TowerCost(towerType types.TowerType) int {
	if stats, ok := c.Towers[string(towerType)]; ok {
		return stats.Cost
	}
	return 0
}

// TrapCost 获取陷阱建造价格，未知类型返回 0
func (c *StructureStatsConfig) TrapCost(trapType types.TrapType) int {
	if stats, ok := c.Traps[string(trapType)]; ok {
		return stats.Cost
	}
	return 0
}

// DefaultStructureStats 返回内置的建筑属性配置
func DefaultStructureStats() *StructureStatsConfig {
	return &StructureStatsConfig{
		ProjectileSpeed: 300,
		Towers: map[string]TowerStats{
			"physical": {
				Cost: 50, Damage: 20, Range: 130, AttackInterval: 0.8,
				Upgrades: UpgradePaths{
					Path1: []UpgradeTier{{Name: "Sniper", Cost: 120}, {Name: "Elite", Cost: 240}},
					Path2: []UpgradeTier{{Name: "Volley", Cost: 110}, {Name: "Bounce", Cost: 220}},
				},
			},
			"magic": {
				Cost: 60, Damage: 18, Range: 130, AttackInterval: 0.8,
				Upgrades: UpgradePaths{
					Path1: []UpgradeTier{{Name: "Bolt", Cost: 140}, {Name: "Arc", Cost: 280}},
					Path2: []UpgradeTier{{Name: "Nova", Cost: 160}, {Name: "Vortex", Cost: 320}},
				},
			},
			"ice": {
				Cost: 70, Damage: 0, Range: 130, AttackInterval: 0.8, FreezeDelay: 0.8,
				Upgrades: UpgradePaths{
					Path1: []UpgradeTier{{Name: "Glacial", Cost: 130}, {Name: "Shatter", Cost: 260}},
					Path2: []UpgradeTier{{Name: "Blizzard", Cost: 150}, {Name: "Absolute Zero", Cost: 300}},
				},
			},
			"executioner": {
				Cost: 90, Damage: 45, Range: 150, AttackInterval: 1.6,
				Upgrades: UpgradePaths{
					Path1: []UpgradeTier{{Name: "Mark", Cost: 110}, {Name: "Condemn", Cost: 230}},
					Path2: []UpgradeTier{{Name: "Rail", Cost: 120}, {Name: "Railgun", Cost: 250}},
				},
			},
		},
		Traps: map[string]TrapStats{
			"fire": {
				Cost: 40, DPS: 30, AuraRadius: 2,
				Upgrades: UpgradePaths{
					Path1: []UpgradeTier{{Name: "Inferno", Cost: 80}, {Name: "Phoenix", Cost: 180}},
					Path2: []UpgradeTier{{Name: "Oil Slick", Cost: 90}, {Name: "Detonate", Cost: 200}},
				},
			},
			"spikes": {
				Cost: 30, Damage: 50, Interval: 1,
				Upgrades: UpgradePaths{
					Path1: []UpgradeTier{{Name: "Barbed", Cost: 70}, {Name: "Impale", Cost: 160}},
					Path2: []UpgradeTier{{Name: "Cluster", Cost: 80}, {Name: "Quake", Cost: 170}},
				},
			},
		},
		Sentinel: SentinelStats{
			Cost:           80,
			Duration:       6.0,
			Cooldown:       10.0,
			Range:          100,
			BarrierSlow:    2.5,
			BarrierPush:    2,
			ReflectDPS:     15,
			OverloadDamage: 150,
			OverloadRadius: 100,
			PulseForce:     37.5,
			PulseRadius:    80,
			PulseInterval:  2.0,
			Upgrades: UpgradePaths{
				Path1: []UpgradeTier{{Name: "Barrier", Cost: 100}, {Name: "Reflect", Cost: 200}},
				Path2: []UpgradeTier{{Name: "Pulse", Cost: 110}, {Name: "Overload", Cost: 220}},
			},
		},
	}
}
