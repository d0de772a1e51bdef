package components

// HealthComponent 存储敌人的生命值与护盾
// 伤害先扣除护盾，剩余部分再扣除生命值
type HealthComponent struct {
	Current float64 // 当前生命值
	Max     float64 // 最大生命值
	Shield  float64 // 护盾值（战士紧急护盾）
}

// Fraction 返回当前生命比例
func (h *HealthComponent) Fraction() float64 {
	if h.Max <= 0 {
		return 0
	}
	return h.Current / h.Max
}
