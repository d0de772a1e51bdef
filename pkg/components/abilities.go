package components

// 每种敌人只携带属于自己的技能状态组件，
// 一次性阈值技能在各自组件中记录是否已触发

// FighterAbilityComponent 战士：低血量时获得一次护盾
type FighterAbilityComponent struct {
	ShieldUsed bool
}

// TankAbilityComponent 坦克：低血量时抗性翻倍
type TankAbilityComponent struct {
	Fortified bool
}

// MageAbilityComponent 法师：格挡投射物
type MageAbilityComponent struct {
	BlockCharges int
}

// AssassinAbilityComponent 刺客：概率闪避，低血量时瞬移或加速
type AssassinAbilityComponent struct {
	DodgeBase     float64 // 当前基础闪避率
	DodgeStreak   int     // 累计成功闪避次数
	EmergencyUsed bool
}

// DodgeChance 返回当前闪避率
func (a *AssassinAbilityComponent) DodgeChance(decay, floor float64) float64 {
	chance := a.DodgeBase - decay*float64(a.DodgeStreak)
	if chance < floor {
		return floor
	}
	return chance
}

// HealerAbilityComponent 治疗者：周期性链式治疗
type HealerAbilityComponent struct {
	Timer float64
}

// MinotaurAbilityComponent 牛头怪：眩晕脉冲与二阶段
type MinotaurAbilityComponent struct {
	StunTimer float64 // 距离下次眩晕脉冲的时间
	Phase2    bool
}

// DemonAbilityComponent 恶魔：换路、召唤、瞬移
// 每项技能只在真正成功后才标记完成
type DemonAbilityComponent struct {
	LaneSwapped    bool
	MinionsSpawned bool
	Teleported     bool
}
