package maze

import (
	"math/rand"
	"testing"

	"github.com/gonewx/mazetd/pkg/types"
)

// reachable 使用 BFS 检查仅经过路径格能否从 start 到达 goal
func reachable(grid *Grid, start, goal Point) bool {
	if !grid.IsPath(start) {
		return false
	}
	visited := map[Point]bool{start: true}
	queue := []Point{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			return true
		}
		for _, d := range Neighbors4 {
			next := Point{cur.X + d.X, cur.Y + d.Y}
			if grid.IsPath(next) && !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

func defaultOptions() Options {
	return Options{
		Width:      40,
		Height:     40,
		LanesMin:   3,
		LanesMax:   4,
		MinSpacing: 10,
		Attempts:   30,
	}
}

func TestGenerateFourLanes(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		opts := defaultOptions()
		opts.LaneCount = 4
		layout := Generate(opts, rand.New(rand.NewSource(seed)))

		if len(layout.Lanes) != 4 {
			t.Fatalf("seed %d: expected 4 lanes, got %d", seed, len(layout.Lanes))
		}
		for i := 0; i < len(layout.Lanes); i++ {
			for j := i + 1; j < len(layout.Lanes); j++ {
				if d := layout.Lanes[i].Manhattan(layout.Lanes[j]); d < opts.MinSpacing {
					t.Errorf("seed %d: lanes %v and %v only %d apart", seed, layout.Lanes[i], layout.Lanes[j], d)
				}
			}
			if !reachable(layout.Grid, layout.Lanes[i], layout.Goal) {
				t.Errorf("seed %d: lane %v cannot reach goal", seed, layout.Lanes[i])
			}
		}
	}
}

func TestGenerateGridShape(t *testing.T) {
	layout := Generate(defaultOptions(), rand.New(rand.NewSource(7)))
	grid := layout.Grid

	if n := len(layout.Lanes); n < 3 || n > 4 {
		t.Errorf("Expected 3-4 lanes, got %d", n)
	}
	if layout.Goal != (Point{20, 20}) {
		t.Errorf("Expected goal (20,20), got %v", layout.Goal)
	}
	if !grid.IsPath(layout.Goal) {
		t.Error("Goal tile must be a path tile")
	}

	// 边框全为墙体
	for x := 0; x < grid.Width; x++ {
		if grid.At(Point{x, 0}) != types.TileWall || grid.At(Point{x, grid.Height - 1}) != types.TileWall {
			t.Fatalf("Border column %d is not wall", x)
		}
	}
	for y := 0; y < grid.Height; y++ {
		if grid.At(Point{0, y}) != types.TileWall || grid.At(Point{grid.Width - 1, y}) != types.TileWall {
			t.Fatalf("Border row %d is not wall", y)
		}
	}
	// 越界视为墙体
	if grid.At(Point{-1, 5}) != types.TileWall {
		t.Error("Out of bounds should read as wall")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(defaultOptions(), rand.New(rand.NewSource(42)))
	b := Generate(defaultOptions(), rand.New(rand.NewSource(42)))

	if len(a.Lanes) != len(b.Lanes) {
		t.Fatalf("Lane counts differ: %d vs %d", len(a.Lanes), len(b.Lanes))
	}
	for i := range a.Lanes {
		if a.Lanes[i] != b.Lanes[i] {
			t.Errorf("Lane %d differs: %v vs %v", i, a.Lanes[i], b.Lanes[i])
		}
	}
	if a.Grid.CountPath() != b.Grid.CountPath() {
		t.Error("Same seed should produce identical grids")
	}
}

func TestExpandLanes(t *testing.T) {
	t.Run("新路线连通且拆除覆盖的防御塔", func(t *testing.T) {
		for seed := int64(1); seed <= 10; seed++ {
			rng := rand.New(rand.NewSource(seed))
			opts := defaultOptions()
			opts.LaneCount = 3
			layout := Generate(opts, rng)

			// 在每个地面格上都放一座塔，保证新路线一定会覆盖到塔
			var towers []Point
			for y := 1; y < layout.Grid.Height-1; y++ {
				for x := 1; x < layout.Grid.Width-1; x++ {
					p := Point{x, y}
					if layout.Grid.At(p) == types.TileFloor {
						towers = append(towers, p)
					}
				}
			}

			exp, ok := ExpandLanes(layout.Grid, towers, layout.Lanes, 8, opts.MinSpacing, rng)
			if !ok {
				t.Fatalf("seed %d: expansion should succeed", seed)
			}
			if exp.PathTiles[0] != exp.Lane {
				t.Errorf("seed %d: path should start at the new lane entry", seed)
			}
			if !reachable(layout.Grid, exp.Lane, layout.Goal) {
				t.Errorf("seed %d: new lane %v cannot reach goal", seed, exp.Lane)
			}
			if len(exp.DemolishedTowers) == 0 {
				t.Errorf("seed %d: expected towers on the new path to be demolished", seed)
			}
			for _, idx := range exp.DemolishedTowers {
				if !layout.Grid.IsPath(towers[idx]) {
					t.Errorf("seed %d: demolished tower %v is not on a path tile", seed, towers[idx])
				}
			}
		}
	})

	t.Run("达到上限时不扩展", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		opts := defaultOptions()
		opts.LaneCount = 4
		layout := Generate(opts, rng)
		before := layout.Grid.CountPath()

		if _, ok := ExpandLanes(layout.Grid, nil, layout.Lanes, 4, opts.MinSpacing, rng); ok {
			t.Error("Expansion past the lane cap should be a no-op")
		}
		if layout.Grid.CountPath() != before {
			t.Error("Grid must not change when expansion is skipped")
		}
	})
}

func TestPointDistances(t *testing.T) {
	a, b := Point{1, 2}, Point{4, -2}
	if a.Manhattan(b) != 7 {
		t.Errorf("Expected manhattan 7, got %d", a.Manhattan(b))
	}
	if a.Chebyshev(b) != 4 {
		t.Errorf("Expected chebyshev 4, got %d", a.Chebyshev(b))
	}
}
