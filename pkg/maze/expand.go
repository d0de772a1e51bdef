package maze

import (
	"math/rand"

	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/types"
	"github.com/sirupsen/logrus"
)

// Expansion 路线扩展结果
type Expansion struct {
	PathTiles        []Point // 新路线经过的格子（从新入口开始）
	DemolishedTowers []int   // 被新路线覆盖的防御塔下标（对应传入的 towers）
	Lane             Point   // 新路线入口
}

// ExpandLanes 在地图边缘新开一条路线，接入最近的已有路径
//
// 参数：
//   - grid: 地图网格（会被修改）
//   - towers: 当前防御塔所在格
//   - lanes: 已有路线入口
//   - maxLanes: 路线总数上限
//   - minSpacing: 新入口与已有入口的期望最小间距
//
// 返回：
//   - *Expansion: 扩展结果
//   - bool: 未扩展（达到上限或找不到接入点）时为 false
func ExpandLanes(grid *Grid, towers []Point, lanes []Point, maxLanes, minSpacing int, rng *rand.Rand) (*Expansion, bool) {
	if len(lanes) >= maxLanes {
		logger.Log.Debugf("[MazeExpander] Lane cap %d reached, skipping expansion", maxLanes)
		return nil, false
	}

	entry, ok := pickExpansionEntry(grid, lanes, minSpacing, rng)
	if !ok {
		return nil, false
	}

	target, ok := nearestJoinTile(grid, entry, lanes)
	if !ok {
		logger.Log.Warn("[MazeExpander] No joinable path tile found")
		return nil, false
	}

	path := manhattanWalk(entry, target)
	for _, p := range path {
		grid.Set(p, types.TilePath)
	}

	onPath := make(map[Point]bool, len(path))
	for _, p := range path {
		onPath[p] = true
	}
	demolished := make([]int, 0)
	for i, t := range towers {
		if onPath[t] {
			demolished = append(demolished, i)
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"entry":      entry,
		"join":       target,
		"length":     len(path),
		"demolished": len(demolished),
	}).Info("[MazeExpander] New lane opened")

	return &Expansion{PathTiles: path, DemolishedTowers: demolished, Lane: entry}, true
}

// pickExpansionEntry 在边框内侧一圈随机选取新入口
// 优先选择满足间距的地面格，否则退而求其次选择任意地面格
func pickExpansionEntry(grid *Grid, lanes []Point, minSpacing int, rng *rand.Rand) (Point, bool) {
	ring := perimeterRing(grid)
	if len(ring) == 0 {
		return Point{}, false
	}

	var fallback Point
	hasFallback := false
	order := rng.Perm(len(ring))
	for _, idx := range order {
		p := ring[idx]
		if grid.At(p) != types.TileFloor {
			continue
		}
		if !hasFallback {
			fallback, hasFallback = p, true
		}
		spaced := true
		for _, lane := range lanes {
			if lane.Manhattan(p) < minSpacing {
				spaced = false
				break
			}
		}
		if spaced {
			return p, true
		}
	}
	return fallback, hasFallback
}

// perimeterRing 返回边框内侧一圈的所有格子（固定顺序，不重复）
func perimeterRing(grid *Grid) []Point {
	seen := make(map[Point]bool)
	ring := make([]Point, 0, 2*(grid.Width+grid.Height))
	add := func(p Point) {
		if !seen[p] {
			seen[p] = true
			ring = append(ring, p)
		}
	}
	for x := 1; x < grid.Width-1; x++ {
		add(Point{x, 1})
		add(Point{x, grid.Height - 2})
	}
	for y := 1; y < grid.Height-1; y++ {
		add(Point{1, y})
		add(Point{grid.Width - 2, y})
	}
	return ring
}

// nearestJoinTile 查找距离入口最近、且不与任何已有入口相邻的路径格
func nearestJoinTile(grid *Grid, entry Point, lanes []Point) (Point, bool) {
	best := Point{}
	bestDist := -1
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			p := Point{x, y}
			if !grid.IsPath(p) {
				continue
			}
			nearLane := false
			for _, lane := range lanes {
				if lane.Manhattan(p) <= 1 {
					nearLane = true
					break
				}
			}
			if nearLane {
				continue
			}
			d := entry.Manhattan(p)
			if bestDist < 0 || d < bestDist {
				best, bestDist = p, d
			}
		}
	}
	return best, bestDist >= 0
}

// manhattanWalk 先沿 X 再沿 Y 逐格走到目标，返回包含两端的格子序列
func manhattanWalk(from, to Point) []Point {
	path := []Point{from}
	cur := from
	for cur != to {
		switch {
		case cur.X < to.X:
			cur.X++
		case cur.X > to.X:
			cur.X--
		case cur.Y < to.Y:
			cur.Y++
		default:
			cur.Y--
		}
		path = append(path, cur)
	}
	return path
}
