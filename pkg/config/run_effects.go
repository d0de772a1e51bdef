package config

import "github.com/gonewx/mazetd/pkg/logger"

// RunEffects 一局内生效的修正结果
// 由 CompileRunEffects 从选中的修正按顺序覆盖基础值得到
type RunEffects struct {
	ModifierIDs []int

	ArcherDamageMult        float64
	MagicIntervalMult       float64
	SlowDecayMult           float64
	StartGoldBonus          int
	SpikeDamageMult         float64
	BurnDotMult             float64
	TowerRangeMult          float64
	RapidDeployment         bool
	FocusedTargetingBonus   float64
	SellRefundRate          float64
	EnemySpeedMult          float64
	EnemyRewardMult         float64
	TowerDamageMult         float64
	KillRewardMult          float64
	InterestCapBonus        int
	InterestMult            float64
	TowerAttackIntervalMult float64
}

// DefaultRunEffects 返回未选择任何修正时的基础效果
func DefaultRunEffects() RunEffects {
	return RunEffects{
		ArcherDamageMult:        1.0,
		MagicIntervalMult:       1.0,
		SlowDecayMult:           1.0,
		SpikeDamageMult:         1.0,
		BurnDotMult:             1.0,
		TowerRangeMult:          1.0,
		FocusedTargetingBonus:   1.0,
		SellRefundRate:          0.70,
		EnemySpeedMult:          1.0,
		EnemyRewardMult:         1.0,
		TowerDamageMult:         1.0,
		KillRewardMult:          1.0,
		InterestMult:            1.0,
		TowerAttackIntervalMult: 1.0,
	}
}

// CompileRunEffects 按给定顺序应用修正，后应用的覆盖先应用的同名效果
// 未知 ID 会被忽略并记录警告
func CompileRunEffects(c *ModifiersConfig, ids ...int) RunEffects {
	effects := DefaultRunEffects()
	for _, id := range ids {
		if mapped, ok := c.LegacyIDs[id]; ok {
			id = mapped
		}
		m, ok := c.GetModifier(id)
		if !ok {
			logger.Log.Warnf("[RunEffects] Unknown modifier %d ignored", id)
			continue
		}
		effects.ModifierIDs = append(effects.ModifierIDs, id)
		for key, value := range m.Effects {
			effects.set(key, value)
		}
	}
	return effects
}

func (e *RunEffects) set(key string, value float64) {
	switch key {
	case EffectArcherDamageMult:
		e.ArcherDamageMult = value
	case EffectMagicIntervalMult:
		e.MagicIntervalMult = value
	case EffectSlowDecayMult:
		e.SlowDecayMult = value
	case EffectStartGoldBonus:
		e.StartGoldBonus = int(value)
	case EffectSpikeDamageMult:
		e.SpikeDamageMult = value
	case EffectBurnDotMult:
		e.BurnDotMult = value
	case EffectTowerRangeMult:
		e.TowerRangeMult = value
	case EffectRapidDeployment:
		e.RapidDeployment = value != 0
	case EffectFocusedTargetingBonus:
		e.FocusedTargetingBonus = value
	case EffectSellRefundRate:
		e.SellRefundRate = value
	case EffectEnemySpeedMult:
		e.EnemySpeedMult = value
	case EffectEnemyRewardMult:
		e.EnemyRewardMult = value
	case EffectTowerDamageMult:
		e.TowerDamageMult = value
	case EffectKillRewardMult:
		e.KillRewardMult = value
	case EffectInterestCapBonus:
		e.InterestCapBonus = int(value)
	case EffectInterestMult:
		e.InterestMult = value
	case EffectTowerAttackIntervalMult:
		e.TowerAttackIntervalMult = value
	}
}
