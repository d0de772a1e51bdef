package components

import (
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
)

// StructureComponent 所有建筑共有的记录
// 建筑的位置使用 PositionComponent（格子中心像素坐标）
type StructureComponent struct {
	Kind types.StructureKind
	Tile maze.Point
	Name string
}

// UpgradeComponent 两条互斥升级路线的状态及花费记录
type UpgradeComponent struct {
	Path1Level   int
	Path2Level   int
	BuildCost    int  // 实际支付的建造价格
	UpgradeSpent int  // 累计升级花费
	Sold         bool // 已出售（不可再次出售）
}

// Level 返回指定路线的当前等级
func (u *UpgradeComponent) Level(path types.UpgradePath) int {
	switch path {
	case types.Path1:
		return u.Path1Level
	case types.Path2:
		return u.Path2Level
	default:
		return 0
	}
}

// CanUpgrade 判断指定路线是否还能升级
// 任意一条路线达到 1 级后，另一条路线永久锁定
func (u *UpgradeComponent) CanUpgrade(path types.UpgradePath) bool {
	if u.Sold {
		return false
	}
	switch path {
	case types.Path1:
		return u.Path1Level < types.MaxUpgradeTier && u.Path2Level == 0
	case types.Path2:
		return u.Path2Level < types.MaxUpgradeTier && u.Path1Level == 0
	default:
		return false
	}
}

// TowerComponent 防御塔的战斗属性
// 所有可选能力都是常驻字段，零值表示未启用
type TowerComponent struct {
	Type           types.TowerType
	DamageType     types.DamageType
	Damage         float64
	Range          float64
	AttackInterval float64
	Cooldown       float64
	Targeting      types.TargetingMode
	StunTimer      float64 // 被 Boss 眩晕的剩余时间

	ProjectileCount int     // 每次攻击发射的投射物数
	ArmorPierce     float64 // 穿甲比例：目标抗性按 (1-ArmorPierce) 计算
	Bounces         int     // 命中后弹射次数
	BounceRadius    float64
	ChainCount      int // 连锁额外目标数
	ChainRadius     float64
	StatusSpread    bool // 连锁时传播主目标的燃烧/流血/标记
	AoERadius       float64
	PullSpeed       float64 // 每秒把范围内敌人拉向塔的距离

	FreezeDelay  float64 // 冰塔激光冰冻脉冲间隔
	ShatterBonus float64 // 对冰冻目标的额外伤害比例（减速目标减半）
	SlowAoERate  float64 // 每秒对范围内所有敌人施加的减速层数
	MultiLaser   bool    // 同时锁定范围内所有目标
	AbsoluteZero bool    // 每帧对范围内所有敌人施加足以冰冻的减速

	MarkStrength     float64 // 命中施加的易伤强度
	MarkDuration     float64
	ExecuteThreshold float64 // 命中后生命比例不高于此值直接处决
	RailPierce       int     // 沿弹道额外贯穿的目标数
}

// TrapComponent 陷阱属性，绑定在一个路径格上
type TrapComponent struct {
	Type       types.TrapType
	DPS        float64
	AuraRadius int
	Damage     float64
	Interval   float64
	Timer      float64

	BurnSpread      bool    // 点燃光环内敌人并向附近蔓延
	Phoenix         bool    // 光环内击杀时点燃周围敌人
	Detonate        bool    // 光环内击杀时爆炸
	BleedDuration   float64 // 命中附加流血
	ImpaleDuration  float64 // 命中附加钉刺
	ClusterFraction float64 // 相邻格伤害比例
	QuakeFraction   float64 // 两格内伤害比例
}

// SentinelComponent 哨兵状态机：冷却/待机 与 屏障激活 两种状态
type SentinelComponent struct {
	Range    float64
	Duration float64
	Cooldown float64 // 屏障结束后的冷却时长

	Active        bool
	Timer         float64 // 本次屏障已持续时间
	CooldownLeft  float64
	BarrierTile   maze.Point
	PulseTimer    float64
	PulseEnabled  bool
	Overload      bool
	ReflectDPS    float64
	PulseInterval float64
}
