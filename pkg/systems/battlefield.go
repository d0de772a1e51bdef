package systems

import (
	"math"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/spatial"
)

// Battlefield 一帧内所有战斗系统共享的状态
//
// 空间索引在敌人移动后重建，此后直到位移缓冲区刷新前都不允许修改敌人坐标
type Battlefield struct {
	EM            *ecs.EntityManager
	Index         *spatial.Index
	Status        *StatusEngine
	Damage        *DamageResolver
	Effects       config.RunEffects
	Goal          maze.Point
	TileSize      float64
	Displacements *DisplacementBuffer

	ids    []ecs.EntityID
	xs, ys []float64
	buf    []ecs.EntityID
}

// NewBattlefield 创建共享战斗状态
func NewBattlefield(em *ecs.EntityManager, index *spatial.Index, status *StatusEngine, damage *DamageResolver, effects config.RunEffects, goal maze.Point, tileSize float64) *Battlefield {
	return &Battlefield{
		EM:            em,
		Index:         index,
		Status:        status,
		Damage:        damage,
		Effects:       effects,
		Goal:          goal,
		TileSize:      tileSize,
		Displacements: NewDisplacementBuffer(),
	}
}

// RebuildSpatialIndex 用当前存活敌人重建空间索引
// 必须在敌人移动之后、防御塔更新之前调用
func (bf *Battlefield) RebuildSpatialIndex() {
	bf.ids = bf.ids[:0]
	bf.xs = bf.xs[:0]
	bf.ys = bf.ys[:0]
	for _, id := range LiveEnemies(bf.EM) {
		pos, ok := ecs.GetComponent[*components.PositionComponent](bf.EM, id)
		if !ok {
			continue
		}
		bf.ids = append(bf.ids, id)
		bf.xs = append(bf.xs, pos.X)
		bf.ys = append(bf.ys, pos.Y)
	}
	bf.Index.Rebuild(bf.ids, bf.xs, bf.ys)
}

// EnemiesInRange 返回严格处于半径内的存活敌人，追加到 dst 后返回
// 先用空间索引粗筛，再做精确距离判断
func (bf *Battlefield) EnemiesInRange(x, y, r float64, dst []ecs.EntityID) []ecs.EntityID {
	dst = dst[:0]
	bf.buf = bf.Index.QueryRadius(x, y, r, bf.buf)
	for _, id := range bf.buf {
		if !IsAlive(bf.EM, id) {
			continue
		}
		pos, ok := ecs.GetComponent[*components.PositionComponent](bf.EM, id)
		if !ok || !InRange(x, y, pos.X, pos.Y, r) {
			continue
		}
		dst = append(dst, id)
	}
	return dst
}

// TileOf 返回像素坐标所在的格子
func (bf *Battlefield) TileOf(x, y float64) maze.Point {
	return maze.Point{X: int(math.Floor(x / bf.TileSize)), Y: int(math.Floor(y / bf.TileSize))}
}

// EnemyTile 返回敌人当前所在格
func (bf *Battlefield) EnemyTile(id ecs.EntityID) (maze.Point, bool) {
	pos, ok := ecs.GetComponent[*components.PositionComponent](bf.EM, id)
	if !ok {
		return maze.Point{}, false
	}
	return bf.TileOf(pos.X, pos.Y), true
}

// InRange 判断两点距离是否严格小于半径
func InRange(x1, y1, x2, y2, r float64) bool {
	dx, dy := x2-x1, y2-y1
	return dx*dx+dy*dy < r*r
}

// Distance 返回两点间欧氏距离
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

type displacement struct {
	id     ecs.EntityID
	dx, dy float64
}

// DisplacementBuffer 本帧待应用的敌人位移（拉拽、推开、击退）
// 在所有范围查询完成后统一刷新，避免空间索引失效
type DisplacementBuffer struct {
	pending []displacement
}

// NewDisplacementBuffer 创建位移缓冲区
func NewDisplacementBuffer() *DisplacementBuffer {
	return &DisplacementBuffer{pending: make([]displacement, 0, 16)}
}

// Push 记录一次位移
func (b *DisplacementBuffer) Push(id ecs.EntityID, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	b.pending = append(b.pending, displacement{id: id, dx: dx, dy: dy})
}

// Len 返回待应用的位移数量
func (b *DisplacementBuffer) Len() int {
	return len(b.pending)
}

// Flush 按记录顺序把位移应用到敌人坐标上，并清空缓冲区
func (b *DisplacementBuffer) Flush(em *ecs.EntityManager) {
	for _, d := range b.pending {
		if !IsAlive(em, d.id) {
			continue
		}
		if pos, ok := ecs.GetComponent[*components.PositionComponent](em, d.id); ok {
			pos.X += d.dx
			pos.Y += d.dy
		}
	}
	b.pending = b.pending[:0]
}

// FlushDisplacements 应用本帧缓冲的位移
// 有敌人被移动时重建空间索引，保证后续阶段的范围查询使用最新坐标
func (bf *Battlefield) FlushDisplacements() {
	if bf.Displacements.Len() == 0 {
		return
	}
	bf.Displacements.Flush(bf.EM)
	bf.RebuildSpatialIndex()
}
