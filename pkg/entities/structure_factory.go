package entities

import (
	"fmt"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
)

const (
	// DefaultChainRadius 连锁跳跃半径（像素）
	DefaultChainRadius = 100.0
	// DefaultBounceRadius 弹射索敌半径（像素）
	DefaultBounceRadius = 90.0
)

var towerNames = map[types.TowerType]string{
	types.TowerPhysical:    "Archer Tower",
	types.TowerMagic:       "Magic Tower",
	types.TowerIce:         "Ice Tower",
	types.TowerExecutioner: "Executioner Tower",
}

var trapNames = map[types.TrapType]string{
	types.TrapFire:   "Fire Trap",
	types.TrapSpikes: "Spike Trap",
}

// NewTowerEntity 创建防御塔实体
//
// 参数:
//   - em: 实体管理器
//   - cfg: 建筑属性配置
//   - towerType: 防御塔类型
//   - tile: 所在格
//   - tileSize: 格子边长（像素）
//   - paid: 实际支付的建造价格（用于出售计算）
func NewTowerEntity(em *ecs.EntityManager, cfg *config.StructureStatsConfig, towerType types.TowerType, tile maze.Point, tileSize float64, paid int) (ecs.EntityID, error) {
	stats, ok := cfg.GetTowerStats(towerType)
	if !ok {
		return 0, fmt.Errorf("unknown tower type: %s", towerType)
	}

	x, y := TileCenter(tile, tileSize)
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{X: x, Y: y})
	ecs.AddComponent(em, id, &components.StructureComponent{
		Kind: types.StructureTower,
		Tile: tile,
		Name: towerNames[towerType],
	})
	ecs.AddComponent(em, id, &components.UpgradeComponent{BuildCost: paid})
	ecs.AddComponent(em, id, &components.TowerComponent{
		Type:            towerType,
		DamageType:      towerType.DamageType(),
		Damage:          stats.Damage,
		Range:           stats.Range,
		AttackInterval:  stats.AttackInterval,
		Targeting:       types.TargetFirst,
		ProjectileCount: 1,
		ChainRadius:     DefaultChainRadius,
		BounceRadius:    DefaultBounceRadius,
		FreezeDelay:     stats.FreezeDelay,
	})
	return id, nil
}

// NewTrapEntity 创建陷阱实体（调用方负责确认所在格为路径格）
func NewTrapEntity(em *ecs.EntityManager, cfg *config.StructureStatsConfig, trapType types.TrapType, tile maze.Point, tileSize float64, paid int) (ecs.EntityID, error) {
	stats, ok := cfg.GetTrapStats(trapType)
	if !ok {
		return 0, fmt.Errorf("unknown trap type: %s", trapType)
	}

	interval := stats.Interval
	if interval <= 0 {
		interval = 1.0
	}
	aura := stats.AuraRadius
	if trapType == types.TrapFire && aura <= 0 {
		aura = 2
	}

	x, y := TileCenter(tile, tileSize)
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{X: x, Y: y})
	ecs.AddComponent(em, id, &components.StructureComponent{
		Kind: types.StructureTrap,
		Tile: tile,
		Name: trapNames[trapType],
	})
	ecs.AddComponent(em, id, &components.UpgradeComponent{BuildCost: paid})
	ecs.AddComponent(em, id, &components.TrapComponent{
		Type:       trapType,
		DPS:        stats.DPS,
		AuraRadius: aura,
		Damage:     stats.Damage,
		Interval:   interval,
	})
	return id, nil
}

// NewSentinelEntity 创建哨兵实体（放置在地面格上）
func NewSentinelEntity(em *ecs.EntityManager, cfg *config.StructureStatsConfig, tile maze.Point, tileSize float64, paid int) ecs.EntityID {
	stats := cfg.Sentinel

	x, y := TileCenter(tile, tileSize)
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{X: x, Y: y})
	ecs.AddComponent(em, id, &components.StructureComponent{
		Kind: types.StructureSentinel,
		Tile: tile,
		Name: "Sentinel",
	})
	ecs.AddComponent(em, id, &components.UpgradeComponent{BuildCost: paid})
	ecs.AddComponent(em, id, &components.SentinelComponent{
		Range:         stats.Range,
		Duration:      stats.Duration,
		Cooldown:      stats.Cooldown,
		BarrierTile:   tile,
		PulseInterval: stats.PulseInterval,
	})
	return id
}
