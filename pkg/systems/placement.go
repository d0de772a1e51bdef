package systems

import (
	"math"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/entities"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
)

// 放置校验
// 纯判断函数，不修改任何状态；调用方在扣款与创建建筑之前调用
// 已出售（待删除）的建筑不再占用格子

// CanPlaceTower 判断防御塔能否放置在指定格
//
// 条件：
//   - 格子在地图内且为可建造地面
//   - 格子中心 tileSize 像素以内没有其他防御塔或哨兵
func CanPlaceTower(em *ecs.EntityManager, grid *maze.Grid, tile maze.Point, tileSize float64) bool {
	if !grid.InBounds(tile) || grid.At(tile) != types.TileFloor {
		return false
	}
	cx, cy := entities.TileCenter(tile, tileSize)
	for _, id := range ecs.GetEntitiesWith2[*components.StructureComponent, *components.PositionComponent](em) {
		if em.IsPendingDestroy(id) {
			continue
		}
		s, _ := ecs.GetComponent[*components.StructureComponent](em, id)
		if s.Kind == types.StructureTrap {
			continue
		}
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		if math.Hypot(pos.X-cx, pos.Y-cy) < tileSize {
			return false
		}
	}
	return true
}

// CanPlaceSentinel 判断哨兵能否放置在指定格
// 哨兵与防御塔共用地面格规则
func CanPlaceSentinel(em *ecs.EntityManager, grid *maze.Grid, tile maze.Point, tileSize float64) bool {
	return CanPlaceTower(em, grid, tile, tileSize)
}

// CanPlaceTrap 判断陷阱能否放置在指定格
//
// 条件：
//   - 格子在地图内且为路径格
//   - 该格上没有防御塔，也没有其他陷阱
func CanPlaceTrap(em *ecs.EntityManager, grid *maze.Grid, tile maze.Point, tileSize float64) bool {
	if !grid.InBounds(tile) || grid.At(tile) != types.TilePath {
		return false
	}
	for _, id := range ecs.GetEntitiesWith2[*components.StructureComponent, *components.PositionComponent](em) {
		if em.IsPendingDestroy(id) {
			continue
		}
		s, _ := ecs.GetComponent[*components.StructureComponent](em, id)
		switch s.Kind {
		case types.StructureTrap:
			if s.Tile == tile {
				return false
			}
		case types.StructureTower:
			pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
			if int(pos.X/tileSize) == tile.X && int(pos.Y/tileSize) == tile.Y {
				return false
			}
		}
	}
	return true
}
