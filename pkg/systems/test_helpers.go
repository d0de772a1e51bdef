package systems

import (
	"math/rand"
	"testing"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/entities"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/pathfinding"
	"github.com/gonewx/mazetd/pkg/spatial"
	"github.com/gonewx/mazetd/pkg/types"
)

const testTileSize = 20.0

// testWorld 测试用的战斗环境
// 地图是一条横向走廊，终点在走廊最右端
type testWorld struct {
	em        *ecs.EntityManager
	grid      *maze.Grid
	goal      maze.Point
	paths     *pathfinding.PathCache
	enemyCfg  *config.EnemyStatsConfig
	structCfg *config.StructureStatsConfig
	bf        *Battlefield
}

// corridorGrid 创建只有第 row 行为路径的网格
func corridorGrid(width, height, row int) *maze.Grid {
	g := maze.NewGrid(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			tile := types.TileFloor
			if y == row {
				tile = types.TilePath
			}
			g.Set(maze.Point{X: x, Y: y}, tile)
		}
	}
	return g
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()
	return newTestWorldWithEffects(t, config.DefaultRunEffects())
}

func newTestWorldWithEffects(t *testing.T, effects config.RunEffects) *testWorld {
	t.Helper()
	grid := corridorGrid(20, 5, 2)
	goal := maze.Point{X: 19, Y: 2}
	em := ecs.NewEntityManager()
	enemyCfg := config.DefaultEnemyStats()
	rng := rand.New(rand.NewSource(1))

	status := NewStatusEngine(enemyCfg.Abilities, effects)
	damage := NewDamageResolver(em, rng, enemyCfg.Abilities)
	bf := NewBattlefield(em, spatial.NewIndex(40), status, damage, effects, goal, testTileSize)

	return &testWorld{
		em:        em,
		grid:      grid,
		goal:      goal,
		paths:     pathfinding.NewPathCache(grid),
		enemyCfg:  enemyCfg,
		structCfg: config.DefaultStructureStats(),
		bf:        bf,
	}
}

// spawnEnemy 在指定格生成敌人
func (w *testWorld) spawnEnemy(t *testing.T, enemyType types.EnemyType, tile maze.Point) ecs.EntityID {
	t.Helper()
	id, err := entities.NewEnemyEntity(w.em, w.enemyCfg, testTileSize, entities.EnemySpawn{
		Type: enemyType,
		Tile: tile,
		Goal: w.goal,
	})
	if err != nil {
		t.Fatalf("failed to spawn %s: %v", enemyType, err)
	}
	return id
}

// spawnEnemyAt 在像素坐标处生成敌人
func (w *testWorld) spawnEnemyAt(t *testing.T, enemyType types.EnemyType, x, y float64) ecs.EntityID {
	t.Helper()
	id := w.spawnEnemy(t, enemyType, w.bf.TileOf(x, y))
	pos := w.position(id)
	pos.X, pos.Y = x, y
	return id
}

func (w *testWorld) placeTower(t *testing.T, towerType types.TowerType, tile maze.Point) ecs.EntityID {
	t.Helper()
	id, err := entities.NewTowerEntity(w.em, w.structCfg, towerType, tile, testTileSize, w.structCfg.TowerCost(towerType))
	if err != nil {
		t.Fatalf("failed to place %s tower: %v", towerType, err)
	}
	return id
}

func (w *testWorld) placeTrap(t *testing.T, trapType types.TrapType, tile maze.Point) ecs.EntityID {
	t.Helper()
	id, err := entities.NewTrapEntity(w.em, w.structCfg, trapType, tile, testTileSize, w.structCfg.TrapCost(trapType))
	if err != nil {
		t.Fatalf("failed to place %s trap: %v", trapType, err)
	}
	return id
}

func (w *testWorld) placeSentinel(tile maze.Point) ecs.EntityID {
	return entities.NewSentinelEntity(w.em, w.structCfg, tile, testTileSize, w.structCfg.Sentinel.Cost)
}

func (w *testWorld) health(id ecs.EntityID) *components.HealthComponent {
	h, _ := ecs.GetComponent[*components.HealthComponent](w.em, id)
	return h
}

func (w *testWorld) status(id ecs.EntityID) *components.StatusComponent {
	st, _ := ecs.GetComponent[*components.StatusComponent](w.em, id)
	return st
}

func (w *testWorld) position(id ecs.EntityID) *components.PositionComponent {
	pos, _ := ecs.GetComponent[*components.PositionComponent](w.em, id)
	return pos
}

func (w *testWorld) tower(id ecs.EntityID) *components.TowerComponent {
	tower, _ := ecs.GetComponent[*components.TowerComponent](w.em, id)
	return tower
}

func (w *testWorld) enemySystem() *EnemyBehaviorSystem {
	return NewEnemyBehaviorSystem(w.bf, w.grid, w.paths, w.enemyCfg, []maze.Point{{X: 0, Y: 2}})
}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-6
}
