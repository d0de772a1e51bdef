// Package pathfinding 提供基于网格的 A* 寻路和按地图版本失效的路径缓存
package pathfinding

import "github.com/gonewx/mazetd/pkg/maze"

// node 开放列表中的节点
type node struct {
	p     maze.Point
	g     int
	f     int
	order int // 入堆序号，f 相同时先入先出，保证结果确定
}

// minHeap 按 f 值排序的二叉最小堆
type minHeap []node

func (h minHeap) less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].order < h[j].order
}

func (h *minHeap) push(n node) {
	*h = append(*h, n)
	i := len(*h) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		(*h)[i], (*h)[parent] = (*h)[parent], (*h)[i]
		i = parent
	}
}

func (h *minHeap) pop() node {
	old := *h
	top := old[0]
	last := len(old) - 1
	old[0] = old[last]
	*h = old[:last]

	i := 0
	for {
		l, r := 2*i+1, 2*i+2
		smallest := i
		if l < len(*h) && h.less(l, smallest) {
			smallest = l
		}
		if r < len(*h) && h.less(r, smallest) {
			smallest = r
		}
		if smallest == i {
			break
		}
		(*h)[i], (*h)[smallest] = (*h)[smallest], (*h)[i]
		i = smallest
	}
	return top
}

// FindPath 在路径格上用 A* 求 start 到 goal 的最短四邻域路线
//
// 参数：
//   - grid: 地图网格，只有路径格可通行
//   - start: 起点（必须是路径格）
//   - goal: 终点
//
// 返回：
//   - []maze.Point: 包含起点和终点的格子序列；不可达时为空
func FindPath(grid *maze.Grid, start, goal maze.Point) []maze.Point {
	if !grid.IsPath(start) || !grid.IsPath(goal) {
		return nil
	}
	if start == goal {
		return []maze.Point{start}
	}

	cameFrom := make(map[maze.Point]maze.Point)
	gScore := map[maze.Point]int{start: 0}
	closed := make(map[maze.Point]bool)

	open := make(minHeap, 0, 64)
	order := 0
	open.push(node{p: start, g: 0, f: start.Manhattan(goal), order: order})

	for len(open) > 0 {
		cur := open.pop()
		if closed[cur.p] {
			continue
		}
		if cur.p == goal {
			return reconstruct(cameFrom, start, goal)
		}
		closed[cur.p] = true

		for _, d := range maze.Neighbors4 {
			next := maze.Point{X: cur.p.X + d.X, Y: cur.p.Y + d.Y}
			if !grid.IsPath(next) || closed[next] {
				continue
			}
			g := cur.g + 1
			if old, seen := gScore[next]; seen && g >= old {
				continue
			}
			gScore[next] = g
			cameFrom[next] = cur.p
			order++
			open.push(node{p: next, g: g, f: g + next.Manhattan(goal), order: order})
		}
	}
	return nil
}

func reconstruct(cameFrom map[maze.Point]maze.Point, start, goal maze.Point) []maze.Point {
	path := []maze.Point{goal}
	for cur := goal; cur != start; {
		cur = cameFrom[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
