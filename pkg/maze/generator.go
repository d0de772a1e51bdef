package maze

import (
	"math/rand"

	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/types"
	"github.com/sirupsen/logrus"
)

// edgeMargin 路线入口距离地图角落的最小格数
const edgeMargin = 3

// Options 地图生成参数
type Options struct {
	Width      int
	Height     int
	LanesMin   int // 初始路线数下限
	LanesMax   int // 初始路线数上限
	LaneCount  int // 大于 0 时固定路线数，忽略上下限
	MinSpacing int // 路线入口之间最小曼哈顿距离
	Attempts   int // 每个区域随机尝试次数
}

// Layout 生成结果
type Layout struct {
	Grid  *Grid
	Lanes []Point // 路线入口，按生成顺序，下标即路线编号
	Goal  Point
}

// zone 地图边缘区域
type zone int

const (
	zoneNorth zone = iota
	zoneEast
	zoneSouth
	zoneWest
	zoneCount
)

// Generate 生成带边框的地图，并从不同边缘区域开出 L 形路线汇聚到中心终点
//
// 入口间距策略：先在区域内随机尝试，再在全部边缘位置中寻找满足间距的位置，
// 都失败时接受第一次随机的位置。
func Generate(opts Options, rng *rand.Rand) *Layout {
	grid := NewGrid(opts.Width, opts.Height)
	for y := 1; y < opts.Height-1; y++ {
		for x := 1; x < opts.Width-1; x++ {
			grid.Set(Point{x, y}, types.TileFloor)
		}
	}

	goal := Point{opts.Width / 2, opts.Height / 2}

	laneCount := opts.LaneCount
	if laneCount <= 0 {
		span := opts.LanesMax - opts.LanesMin + 1
		if span < 1 {
			span = 1
		}
		laneCount = opts.LanesMin + rng.Intn(span)
	}

	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = 30
	}

	zones := rng.Perm(int(zoneCount))
	lanes := make([]Point, 0, laneCount)
	for i := 0; i < laneCount; i++ {
		z := zone(zones[i%len(zones)])
		lane := pickLaneEntry(grid, z, lanes, goal, opts.MinSpacing, attempts, rng)
		lanes = append(lanes, lane)
		carveL(grid, lane, goal, rng.Intn(2) == 0)
	}
	grid.Set(goal, types.TilePath)

	logger.Log.WithFields(logrus.Fields{
		"lanes": len(lanes),
		"goal":  goal,
	}).Debug("[MazeGenerator] Layout generated")

	return &Layout{Grid: grid, Lanes: lanes, Goal: goal}
}

// pickLaneEntry 在指定区域中选取一个路线入口
func pickLaneEntry(grid *Grid, z zone, existing []Point, goal Point, minSpacing, attempts int, rng *rand.Rand) Point {
	var first Point
	for i := 0; i < attempts; i++ {
		candidate := zoneCandidate(grid, z, rng)
		if i == 0 {
			first = candidate
		}
		if isSpaced(candidate, existing, goal, minSpacing) {
			return candidate
		}
	}

	// 放宽：依次检查本区域及其他区域的所有边缘位置
	for offset := 0; offset < int(zoneCount); offset++ {
		for _, candidate := range zonePositions(grid, zone((int(z)+offset)%int(zoneCount))) {
			if isSpaced(candidate, existing, goal, minSpacing) {
				logger.Log.Debugf("[MazeGenerator] Zone %d relaxed to %v", z, candidate)
				return candidate
			}
		}
	}

	logger.Log.Warnf("[MazeGenerator] No spaced entry for zone %d, forcing %v", z, first)
	return first
}

// isSpaced 检查候选入口与已有入口的间距
func isSpaced(candidate Point, existing []Point, goal Point, minSpacing int) bool {
	if candidate == goal {
		return false
	}
	for _, p := range existing {
		if p == candidate || p.Manhattan(candidate) < minSpacing {
			return false
		}
	}
	return true
}

// zoneCandidate 在区域边缘上随机取一个位置（位于边框内侧一圈）
func zoneCandidate(grid *Grid, z zone, rng *rand.Rand) Point {
	alongX := edgeMargin + rng.Intn(max(1, grid.Width-2*edgeMargin))
	alongY := edgeMargin + rng.Intn(max(1, grid.Height-2*edgeMargin))
	switch z {
	case zoneNorth:
		return Point{alongX, 1}
	case zoneSouth:
		return Point{alongX, grid.Height - 2}
	case zoneWest:
		return Point{1, alongY}
	default:
		return Point{grid.Width - 2, alongY}
	}
}

// zonePositions 返回区域内所有可作为入口的位置（固定顺序）
func zonePositions(grid *Grid, z zone) []Point {
	var positions []Point
	switch z {
	case zoneNorth, zoneSouth:
		y := 1
		if z == zoneSouth {
			y = grid.Height - 2
		}
		for x := edgeMargin; x < grid.Width-edgeMargin; x++ {
			positions = append(positions, Point{x, y})
		}
	default:
		x := 1
		if z == zoneEast {
			x = grid.Width - 2
		}
		for y := edgeMargin; y < grid.Height-edgeMargin; y++ {
			positions = append(positions, Point{x, y})
		}
	}
	return positions
}

// carveL 沿两段轴向线段从 from 开路到 to
func carveL(grid *Grid, from, to Point, horizontalFirst bool) {
	corner := Point{to.X, from.Y}
	if !horizontalFirst {
		corner = Point{from.X, to.Y}
	}
	carveLine(grid, from, corner)
	carveLine(grid, corner, to)
}

// carveLine 沿单一轴向开路（包含两端）
func carveLine(grid *Grid, from, to Point) {
	dx, dy := sign(to.X-from.X), sign(to.Y-from.Y)
	p := from
	for {
		grid.Set(p, types.TilePath)
		if p == to {
			return
		}
		p = Point{p.X + dx, p.Y + dy}
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
