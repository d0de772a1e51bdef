package components

import "github.com/gonewx/mazetd/pkg/types"

// StatusEffect 单个定时状态
// Duration > 0 时视为生效
type StatusEffect struct {
	Kind     types.EffectKind
	Duration float64
	Strength float64
}

// StatusComponent 敌人身上的状态集合及其派生值
type StatusComponent struct {
	Effects map[types.EffectKind]*StatusEffect

	FreezeImmunity float64 // 冰冻免疫剩余时间
	FreezeResist   float64 // 冰冻抗性 0~1，缩短冰冻时长
	ImpairImmune   bool    // 免疫一切移动限制（牛头怪二阶段）

	// 以下字段每帧由状态引擎重新计算
	SlowStacks      float64
	Burning         bool
	Bleeding        bool
	DamageTakenMult float64
}

// NewStatusComponent 创建空状态集合
func NewStatusComponent(freezeResist float64) *StatusComponent {
	return &StatusComponent{
		Effects:         make(map[types.EffectKind]*StatusEffect),
		FreezeResist:    freezeResist,
		DamageTakenMult: 1.0,
	}
}

// Active 判断指定状态是否生效
func (s *StatusComponent) Active(kind types.EffectKind) bool {
	e, ok := s.Effects[kind]
	return ok && e.Duration > 0
}

// Strength 返回生效状态的强度，未生效时为 0
func (s *StatusComponent) Strength(kind types.EffectKind) float64 {
	if e, ok := s.Effects[kind]; ok && e.Duration > 0 {
		return e.Strength
	}
	return 0
}

// Immobilized 判断本帧是否不能移动（冰冻或被钉住）
func (s *StatusComponent) Immobilized() bool {
	if s.ImpairImmune {
		return false
	}
	return s.Active(types.EffectFrozen) || s.Active(types.EffectImpale)
}
