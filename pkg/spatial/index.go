// Package spatial 提供均匀网格空间索引，用于按半径查询敌人
package spatial

import (
	"math"

	"github.com/gonewx/mazetd/pkg/ecs"
)

type cell struct {
	x, y int
}

type entry struct {
	id   ecs.EntityID
	x, y float64
}

// Index 均匀网格空间索引
// 每个逻辑帧在敌人移动后调用 Rebuild，之后的查询都基于该快照
type Index struct {
	cellSize float64
	buckets  map[cell][]entry
	used     []cell // 本次重建使用过的桶，下次重建时只清空这些
}

// NewIndex 创建空间索引
//
// 参数：
//   - cellSize: 网格单元边长（像素），非正数时使用 40
func NewIndex(cellSize float64) *Index {
	if cellSize <= 0 {
		cellSize = 40
	}
	return &Index{
		cellSize: cellSize,
		buckets:  make(map[cell][]entry),
	}
}

func (idx *Index) cellOf(x, y float64) cell {
	return cell{int(math.Floor(x / idx.cellSize)), int(math.Floor(y / idx.cellSize))}
}

// Rebuild 用当前位置快照重建索引，复用已有桶的底层数组
func (idx *Index) Rebuild(ids []ecs.EntityID, xs, ys []float64) {
	for _, c := range idx.used {
		idx.buckets[c] = idx.buckets[c][:0]
	}
	idx.used = idx.used[:0]

	for i, id := range ids {
		c := idx.cellOf(xs[i], ys[i])
		b := idx.buckets[c]
		if len(b) == 0 {
			idx.used = append(idx.used, c)
		}
		idx.buckets[c] = append(b, entry{id: id, x: xs[i], y: ys[i]})
	}
}

// Insert 向索引中追加单个实体（用于本帧内新生成的敌人）
func (idx *Index) Insert(id ecs.EntityID, x, y float64) {
	c := idx.cellOf(x, y)
	b := idx.buckets[c]
	if len(b) == 0 {
		idx.used = append(idx.used, c)
	}
	idx.buckets[c] = append(b, entry{id: id, x: x, y: y})
}

// QueryRadius 返回中心 (x, y) 半径 r 内（含边界）的实体
// 结果按网格行、列、桶内插入顺序排列，同一快照下结果确定
//
// 参数：
//   - buf: 复用的结果切片，会被清空后追加
func (idx *Index) QueryRadius(x, y, r float64, buf []ecs.EntityID) []ecs.EntityID {
	buf = buf[:0]
	if r < 0 {
		return buf
	}
	minC := idx.cellOf(x-r, y-r)
	maxC := idx.cellOf(x+r, y+r)
	r2 := r * r
	for cy := minC.y; cy <= maxC.y; cy++ {
		for cx := minC.x; cx <= maxC.x; cx++ {
			for _, e := range idx.buckets[cell{cx, cy}] {
				dx, dy := e.x-x, e.y-y
				if dx*dx+dy*dy <= r2 {
					buf = append(buf, e.id)
				}
			}
		}
	}
	return buf
}

// Len 返回索引中的实体数量
func (idx *Index) Len() int {
	n := 0
	for _, c := range idx.used {
		n += len(idx.buckets[c])
	}
	return n
}
