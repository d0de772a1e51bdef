package types

// DamageType 伤害类型
type DamageType string

const (
	DamagePhysical DamageType = "physical"
	DamageMagic    DamageType = "magic"
)

// DamageSource 伤害来源
// 用于区分只对投射物生效的交互（法师格挡等）
type DamageSource int

const (
	SourceProjectile DamageSource = iota // 防御塔投射物 / 激光
	SourceTrap                           // 陷阱
	SourceSentinel                       // 哨兵
	SourceStatus                         // 状态效果（燃烧、流血）
	SourceAbility                        // 其他敌人技能
)

// TargetingMode 目标选择模式
type TargetingMode string

const (
	TargetFirst       TargetingMode = "first"        // 路径进度最靠前
	TargetLast        TargetingMode = "last"         // 路径进度最靠后
	TargetStrongest   TargetingMode = "strongest"    // 最大生命值最高
	TargetWeakest     TargetingMode = "weakest"      // 当前生命值最低
	TargetClosestGoal TargetingMode = "closest_goal" // 距终点网格距离最近
)

// TargetingModes 目标模式循环顺序
var TargetingModes = []TargetingMode{
	TargetFirst,
	TargetLast,
	TargetStrongest,
	TargetWeakest,
	TargetClosestGoal,
}

// Next 返回循环顺序中的下一个目标模式
func (m TargetingMode) Next() TargetingMode {
	for i, mode := range TargetingModes {
		if mode == m {
			return TargetingModes[(i+1)%len(TargetingModes)]
		}
	}
	return TargetFirst
}

// EffectKind 状态效果类型
type EffectKind string

const (
	EffectSlow   EffectKind = "slow"
	EffectFrozen EffectKind = "frozen"
	EffectBurn   EffectKind = "burn"
	EffectBleed  EffectKind = "bleed"
	EffectImpale EffectKind = "impale"
	EffectMark   EffectKind = "mark"
)

// Tile 地图格子编码
type Tile int

const (
	TileFloor Tile = 0 // 可建造地面
	TileWall  Tile = 1 // 墙体
	TilePath  Tile = 2 // 敌人可通行路径
)
