package components

import (
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
)

// EnemyComponent 敌人基础记录
// 生命周期：由波次调度在路线入口创建；生命值归零或到达终点后被回收
type EnemyComponent struct {
	Type   types.EnemyType
	Lane   int     // 所在路线编号（换路技能会修改）
	Reward int     // 击杀奖励金币
	Size   float64 // 显示半径
	Scale  float64 // 生成时的强度倍率
	Goal   maze.Point

	Arrived bool // 已到达终点（扣除一点生命）
	Stuck   bool // 无路可走被强制移除（无奖励）
}

// ResistComponent 抗性
// Base 为基础值（会被坦克强化等永久修改），Phys/Magic 为当前生效值
type ResistComponent struct {
	BasePhys  float64
	BaseMagic float64
	Phys      float64
	Magic     float64
}

// For 返回指定伤害类型的当前抗性
func (r *ResistComponent) For(t types.DamageType) float64 {
	if t == types.DamagePhysical {
		return r.Phys
	}
	return r.Magic
}

// MovementComponent 沿缓存路径移动的状态
type MovementComponent struct {
	BaseSpeed float64      // 基础速度（像素/秒）
	SpeedMult float64      // 技能带来的速度倍率
	Path      []maze.Point // 共享的缓存路径（只读）
	Cursor    int          // 下一个目标路径点下标
	Epoch     uint64       // 路径计算时的地图版本
}

// Progress 返回路径进度比例，用于 first/last 目标选择
func (m *MovementComponent) Progress() float64 {
	n := len(m.Path)
	if n < 1 {
		n = 1
	}
	return float64(m.Cursor) / float64(n)
}

// Remaining 返回剩余路径点数量
func (m *MovementComponent) Remaining() int {
	if m.Cursor >= len(m.Path) {
		return 0
	}
	return len(m.Path) - m.Cursor
}
