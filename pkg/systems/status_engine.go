package systems

import (
	"math"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/types"
)

// StackPolicy 状态叠加策略
type StackPolicy int

const (
	// StackRefreshMax 持续时间与强度都取新旧较大值（燃烧、流血、钉刺、易伤）
	StackRefreshMax StackPolicy = iota
	// StackAccumulate 强度累加（受上限约束），持续时间取较大值（减速）
	StackAccumulate
	// StackReplace 直接覆盖
	StackReplace
)

// effectOrder 固定的状态处理顺序，保证结算结果确定
var effectOrder = []types.EffectKind{
	types.EffectSlow,
	types.EffectFrozen,
	types.EffectBurn,
	types.EffectBleed,
	types.EffectImpale,
	types.EffectMark,
}

// StatusEngine 状态效果引擎
//
// 负责状态的施加、叠加、衰减与派生值计算。
// 减速层数达到阈值时立即转为冰冻，并获得覆盖冰冻时长加额外窗口的免疫期，
// 免疫期内或冰冻中不能再叠加减速。
type StatusEngine struct {
	cfg           config.AbilityConfig
	slowDecayMult float64
	burnDotMult   float64
}

// NewStatusEngine 创建状态效果引擎
//
// 参数：
//   - cfg: 技能参数（减速、冰冻、持续伤害相关常量）
//   - effects: 局内修正（减速衰减、燃烧伤害倍率）
func NewStatusEngine(cfg config.AbilityConfig, effects config.RunEffects) *StatusEngine {
	return &StatusEngine{
		cfg:           cfg,
		slowDecayMult: effects.SlowDecayMult,
		burnDotMult:   effects.BurnDotMult,
	}
}

// IsActive 判断状态是否生效
func (se *StatusEngine) IsActive(st *components.StatusComponent, kind types.EffectKind) bool {
	return st.Active(kind)
}

// SetEffect 按叠加策略施加状态
// 免疫移动限制时，减速、冰冻、钉刺会被忽略
func (se *StatusEngine) SetEffect(st *components.StatusComponent, kind types.EffectKind, duration, strength float64, policy StackPolicy) {
	if duration <= 0 {
		return
	}
	if st.ImpairImmune && isImpairment(kind) {
		return
	}

	e, ok := st.Effects[kind]
	if !ok {
		st.Effects[kind] = &components.StatusEffect{Kind: kind, Duration: duration, Strength: strength}
		se.refreshDerived(st)
		return
	}

	switch policy {
	case StackAccumulate:
		e.Duration = math.Max(e.Duration, duration)
		e.Strength += strength
	case StackReplace:
		e.Duration = duration
		e.Strength = strength
	default:
		e.Duration = math.Max(e.Duration, duration)
		e.Strength = math.Max(e.Strength, strength)
	}
	se.refreshDerived(st)
}

// AddSlow 叠加减速层数
// 冰冻中、冰冻免疫期内或免疫移动限制时不生效
//
// 返回：
//   - bool: 是否成功叠加
func (se *StatusEngine) AddSlow(st *components.StatusComponent, amount float64) bool {
	if amount <= 0 || st.ImpairImmune || st.FreezeImmunity > 0 || st.Active(types.EffectFrozen) {
		return false
	}

	e, ok := st.Effects[types.EffectSlow]
	if !ok {
		e = &components.StatusEffect{Kind: types.EffectSlow}
		st.Effects[types.EffectSlow] = e
	}
	e.Strength = math.Min(se.cfg.SlowCap, e.Strength+amount)
	e.Duration = math.Max(e.Duration, se.cfg.SlowDuration)
	st.SlowStacks = e.Strength

	if e.Strength >= se.cfg.FreezeThreshold {
		se.freeze(st)
	}
	return true
}

// freeze 把减速转换为冰冻，并开启免疫窗口
func (se *StatusEngine) freeze(st *components.StatusComponent) {
	delete(st.Effects, types.EffectSlow)

	resist := math.Max(0, math.Min(1, st.FreezeResist))
	duration := se.cfg.FreezeDuration * (1 - resist)
	minDuration := se.cfg.FreezeDuration * se.cfg.FreezeMinFraction
	if duration < minDuration {
		duration = minDuration
	}

	st.Effects[types.EffectFrozen] = &components.StatusEffect{Kind: types.EffectFrozen, Duration: duration}
	st.FreezeImmunity = duration + se.cfg.FreezeImmunityDuration
	st.SlowStacks = 0
}

// ApplyBurn 施加燃烧（只延长时间，强度取较大值）
func (se *StatusEngine) ApplyBurn(st *components.StatusComponent, duration, strength float64) {
	se.SetEffect(st, types.EffectBurn, duration, strength, StackRefreshMax)
}

// ApplyBleed 施加流血
func (se *StatusEngine) ApplyBleed(st *components.StatusComponent, duration, strength float64) {
	se.SetEffect(st, types.EffectBleed, duration, strength, StackRefreshMax)
}

// ApplyImpale 施加钉刺（期间无法移动）
func (se *StatusEngine) ApplyImpale(st *components.StatusComponent, duration float64) {
	se.SetEffect(st, types.EffectImpale, duration, 1.0, StackRefreshMax)
}

// ApplyMark 施加易伤标记
func (se *StatusEngine) ApplyMark(st *components.StatusComponent, duration, strength float64) {
	se.SetEffect(st, types.EffectMark, duration, strength, StackRefreshMax)
}

// SpreadFrom 把来源身上的燃烧、流血、易伤复制给目标
func (se *StatusEngine) SpreadFrom(from, to *components.StatusComponent) {
	for _, kind := range []types.EffectKind{types.EffectBurn, types.EffectBleed, types.EffectMark} {
		if e, ok := from.Effects[kind]; ok && e.Duration > 0 {
			se.SetEffect(to, kind, e.Duration, e.Strength, StackRefreshMax)
		}
	}
}

// EnterImpairImmunity 清除所有移动限制并永久免疫
func (se *StatusEngine) EnterImpairImmunity(st *components.StatusComponent) {
	delete(st.Effects, types.EffectSlow)
	delete(st.Effects, types.EffectFrozen)
	delete(st.Effects, types.EffectImpale)
	st.ImpairImmune = true
	st.FreezeImmunity = 0
	se.refreshDerived(st)
}

// Tick 推进所有状态并重新计算派生值
//
// 返回：
//   - burnDPS: 本帧开始时生效的燃烧每秒伤害（魔法）
//   - bleedDPS: 本帧开始时生效的流血每秒伤害（物理）
func (se *StatusEngine) Tick(st *components.StatusComponent, dt float64) (burnDPS, bleedDPS float64) {
	burnDPS = st.Strength(types.EffectBurn) * se.cfg.BurnDamagePerStrength * se.burnDotMult
	bleedDPS = st.Strength(types.EffectBleed) * se.cfg.BleedDamagePerStrength

	decay := se.cfg.SlowDecayRate * se.slowDecayMult
	for _, kind := range effectOrder {
		e, ok := st.Effects[kind]
		if !ok {
			continue
		}
		e.Duration = math.Max(0, e.Duration-dt)
		if kind == types.EffectSlow {
			e.Strength = math.Max(0, e.Strength-decay*dt)
			if e.Strength <= 0 {
				e.Duration = 0
			}
		}
		if e.Duration <= 0 {
			delete(st.Effects, kind)
		}
	}

	se.refreshDerived(st)
	return burnDPS, bleedDPS
}

// SlowMultiplier 返回减速层数对应的移动倍率
func (se *StatusEngine) SlowMultiplier(st *components.StatusComponent) float64 {
	if st.ImpairImmune {
		return 1.0
	}
	return math.Max(se.cfg.MinSlowMultiplier, 1-st.SlowStacks*se.cfg.SlowPerStack)
}

func (se *StatusEngine) refreshDerived(st *components.StatusComponent) {
	st.SlowStacks = st.Strength(types.EffectSlow)
	st.Burning = st.Active(types.EffectBurn)
	st.Bleeding = st.Active(types.EffectBleed)
	st.DamageTakenMult = 1 + st.Strength(types.EffectMark)
}

func isImpairment(kind types.EffectKind) bool {
	return kind == types.EffectSlow || kind == types.EffectFrozen || kind == types.EffectImpale
}
