package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gonewx/mazetd/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// 可被局内修正覆盖的效果键
const (
	EffectArcherDamageMult        = "archerDamageMult"
	EffectMagicIntervalMult       = "magicIntervalMult"
	EffectSlowDecayMult           = "slowDecayMult"
	EffectStartGoldBonus          = "startGoldBonus"
	EffectSpikeDamageMult         = "spikeDamageMult"
	EffectBurnDotMult             = "burnDotMult"
	EffectTowerRangeMult          = "towerRangeMult"
	EffectRapidDeployment         = "rapidDeployment"
	EffectFocusedTargetingBonus   = "focusedTargetingBonus"
	EffectSellRefundRate          = "sellRefundRate"
	EffectEnemySpeedMult          = "enemySpeedMult"
	EffectEnemyRewardMult         = "enemyRewardMult"
	EffectTowerDamageMult         = "towerDamageMult"
	EffectKillRewardMult          = "killRewardMult"
	EffectInterestCapBonus        = "interestCapBonus"
	EffectInterestMult            = "interestMult"
	EffectTowerAttackIntervalMult = "towerAttackIntervalMult"
)

var knownEffects = map[string]bool{
	EffectArcherDamageMult:        true,
	EffectMagicIntervalMult:       true,
	EffectSlowDecayMult:           true,
	EffectStartGoldBonus:          true,
	EffectSpikeDamageMult:         true,
	EffectBurnDotMult:             true,
	EffectTowerRangeMult:          true,
	EffectRapidDeployment:         true,
	EffectFocusedTargetingBonus:   true,
	EffectSellRefundRate:          true,
	EffectEnemySpeedMult:          true,
	EffectEnemyRewardMult:         true,
	EffectTowerDamageMult:         true,
	EffectKillRewardMult:          true,
	EffectInterestCapBonus:        true,
	EffectInterestMult:            true,
	EffectTowerAttackIntervalMult: true,
}

// ModifierConfig 单个局内修正
type ModifierConfig struct {
	ID          int                `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Tier        int                `yaml:"tier"`
	Effects     map[string]float64 `yaml:"effects"`
}

// ModifiersConfig 局内修正与等级解锁配置
type ModifiersConfig struct {
	Modifiers       []ModifierConfig `yaml:"modifiers"`
	DefaultUnlocked []int            `yaml:"defaultUnlocked"` // 初始解锁的修正 ID
	UnlockByLevel   map[int]int      `yaml:"unlockByLevel"`   // 玩家等级 -> 解锁的修正 ID
	LegacyIDs       map[int]int      `yaml:"legacyIds"`       // 旧存档 ID -> 新 ID
}

// LoadModifiers 从 YAML 文件加载局内修正配置
func LoadModifiers(filepath string) (*ModifiersConfig, error) {
	data, err := embedded.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read modifiers file %s: %w", filepath, err)
	}

	var config ModifiersConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse modifiers YAML from %s: %w", filepath, err)
	}

	if err := validateModifiers(&config); err != nil {
		return nil, fmt.Errorf("invalid modifiers in %s: %w", filepath, err)
	}

	return &config, nil
}

// validateModifiers 验证修正配置：ID 唯一、效果键已知、解锁目标存在
func validateModifiers(config *ModifiersConfig) error {
	ids := make(map[int]bool, len(config.Modifiers))
	for _, m := range config.Modifiers {
		if m.ID <= 0 {
			return fmt.Errorf("modifier %q: id must be positive, got %d", m.Name, m.ID)
		}
		if ids[m.ID] {
			return fmt.Errorf("modifier id %d is duplicated", m.ID)
		}
		ids[m.ID] = true
		for key := range m.Effects {
			if !knownEffects[key] {
				return fmt.Errorf("modifier %d: unknown effect key %q", m.ID, key)
			}
		}
	}

	for _, id := range config.DefaultUnlocked {
		if !ids[id] {
			return fmt.Errorf("defaultUnlocked references unknown modifier %d", id)
		}
	}
	for level, id := range config.UnlockByLevel {
		if level < 2 {
			return fmt.Errorf("unlockByLevel: level must be at least 2, got %d", level)
		}
		if !ids[id] {
			return fmt.Errorf("unlockByLevel: level %d references unknown modifier %d", level, id)
		}
	}
	return nil
}

// GetModifier 按 ID 查找修正
func (c *ModifiersConfig) GetModifier(id int) (*ModifierConfig, bool) {
	for i := range c.Modifiers {
		if c.Modifiers[i].ID == id {
			return &c.Modifiers[i], true
		}
	}
	return nil, false
}

// UnlockLevels 返回按等级升序排列的解锁等级列表
func (c *ModifiersConfig) UnlockLevels() []int {
	levels := make([]int, 0, len(c.UnlockByLevel))
	for level := range c.UnlockByLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}

// DefaultModifiers 返回内置的局内修正配置
func DefaultModifiers() *ModifiersConfig {
	return &ModifiersConfig{
		Modifiers: []ModifierConfig{
			{ID: 1, Name: "Sharpened Arrows", Description: "Archer Tower damage +12%.", Tier: 1, Effects: map[string]float64{EffectArcherDamageMult: 1.12}},
			{ID: 2, Name: "Efficient Wiring", Description: "Magic Tower attack interval -10%.", Tier: 1, Effects: map[string]float64{EffectMagicIntervalMult: 0.90}},
			{ID: 3, Name: "Cold Front", Description: "Slow stack decay rate -25%.", Tier: 1, Effects: map[string]float64{EffectSlowDecayMult: 0.75}},
			{ID: 4, Name: "Prepared Defenses", Description: "Start with +60 gold.", Tier: 1, Effects: map[string]float64{EffectStartGoldBonus: 60}},
			{ID: 5, Name: "Reinforced Triggers", Description: "Spike Trap damage +20%.", Tier: 1, Effects: map[string]float64{EffectSpikeDamageMult: 1.20}},
			{ID: 6, Name: "Hotter Flames", Description: "Burn DOT +20%.", Tier: 1, Effects: map[string]float64{EffectBurnDotMult: 1.20}},
			{ID: 7, Name: "Long Sightlines", Description: "All towers +8% range.", Tier: 1, Effects: map[string]float64{EffectTowerRangeMult: 1.08}},
			{ID: 8, Name: "Rapid Deployment", Description: "First tower built each wave costs -15%.", Tier: 1, Effects: map[string]float64{EffectRapidDeployment: 1}},
			{ID: 9, Name: "Focused Targeting", Description: "Towers gain +10% damage vs Strongest target.", Tier: 1, Effects: map[string]float64{EffectFocusedTargetingBonus: 1.10}},
			{ID: 10, Name: "Efficient Salvage", Description: "Sell refund increased to 75%.", Tier: 1, Effects: map[string]float64{EffectSellRefundRate: 0.75}},
			{ID: 11, Name: "Volatile Enemies", Description: "Enemies +15% speed, rewards +25%.", Tier: 2, Effects: map[string]float64{EffectEnemySpeedMult: 1.15, EffectEnemyRewardMult: 1.25}},
			{ID: 12, Name: "Glass Cannons", Description: "Towers +20% damage, towers -15% range.", Tier: 2, Effects: map[string]float64{EffectTowerDamageMult: 1.20, EffectTowerRangeMult: 0.85}},
			{ID: 13, Name: "Greedy Markets", Description: "Interest cap +50, kill rewards -10%.", Tier: 2, Effects: map[string]float64{EffectInterestCapBonus: 50, EffectKillRewardMult: 0.90}},
			{ID: 14, Name: "Overclocked Grid", Description: "All towers attack 15% faster, interest gains halved.", Tier: 3, Effects: map[string]float64{EffectTowerAttackIntervalMult: 0.85, EffectInterestMult: 0.50}},
		},
		DefaultUnlocked: []int{1, 2, 3},
		UnlockByLevel: map[int]int{
			2: 4, 3: 5, 4: 6, 5: 7, 6: 8, 7: 9, 8: 10, 9: 11, 10: 12, 11: 13, 12: 14,
		},
		LegacyIDs: map[int]int{17: 13, 23: 14},
	}
}

// ParseModifierIDs 解析逗号分隔的修正 ID 列表（如 "1,4,7"），空字符串返回 nil
func ParseModifierIDs(s string) ([]int, error) {
	var ids []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid modifier id %q: %w", field, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
