package entities

import (
	"fmt"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
)

// EnemySpawn 敌人生成参数
type EnemySpawn struct {
	Type         types.EnemyType
	Lane         int
	Tile         maze.Point // 生成格（路线入口或召唤者所在格）
	Goal         maze.Point
	Scale        float64 // 波次强度倍率，<= 0 时按 1 处理
	FreezeResist float64
	SpeedMult    float64 // 局内修正的敌人速度倍率，<= 0 时按 1 处理
}

// TileCenter 返回格子中心的像素坐标
func TileCenter(p maze.Point, tileSize float64) (float64, float64) {
	return float64(p.X)*tileSize + tileSize/2, float64(p.Y)*tileSize + tileSize/2
}

// NewEnemyEntity 创建敌人实体
// 路径不在此处计算，敌人第一次行动时按所在格向缓存请求
//
// 参数:
//   - em: 实体管理器
//   - cfg: 敌人属性配置
//   - tileSize: 格子边长（像素）
//   - spawn: 生成参数
//
// 返回:
//   - ecs.EntityID: 创建的敌人实体ID
//   - error: 敌人类型未配置时返回错误
func NewEnemyEntity(em *ecs.EntityManager, cfg *config.EnemyStatsConfig, tileSize float64, spawn EnemySpawn) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	stats, ok := cfg.GetEnemyStats(spawn.Type)
	if !ok {
		return 0, fmt.Errorf("unknown enemy type: %s", spawn.Type)
	}

	scale := spawn.Scale
	if scale <= 0 {
		scale = 1.0
	}
	speedMult := spawn.SpeedMult
	if speedMult <= 0 {
		speedMult = 1.0
	}

	maxHP := float64(int(float64(stats.MaxHP) * scale))
	if maxHP < 1 {
		maxHP = 1
	}
	x, y := TileCenter(spawn.Tile, tileSize)

	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{X: x, Y: y})
	ecs.AddComponent(em, id, &components.EnemyComponent{
		Type:   spawn.Type,
		Lane:   spawn.Lane,
		Reward: int(float64(stats.Reward) * scale),
		Size:   stats.Size,
		Scale:  scale,
		Goal:   spawn.Goal,
	})
	ecs.AddComponent(em, id, &components.HealthComponent{Current: maxHP, Max: maxHP})
	ecs.AddComponent(em, id, &components.ResistComponent{
		BasePhys:  stats.ResistPhys,
		BaseMagic: stats.ResistMagic,
		Phys:      stats.ResistPhys,
		Magic:     stats.ResistMagic,
	})
	ecs.AddComponent(em, id, &components.MovementComponent{
		BaseSpeed: stats.Speed * scale * speedMult,
		SpeedMult: 1.0,
	})
	ecs.AddComponent(em, id, components.NewStatusComponent(spawn.FreezeResist))

	abilities := cfg.Abilities
	switch spawn.Type {
	case types.EnemyFighter:
		ecs.AddComponent(em, id, &components.FighterAbilityComponent{})
	case types.EnemyTank:
		ecs.AddComponent(em, id, &components.TankAbilityComponent{})
	case types.EnemyMage:
		ecs.AddComponent(em, id, &components.MageAbilityComponent{BlockCharges: abilities.MageBlockCharges})
	case types.EnemyAssassin:
		ecs.AddComponent(em, id, &components.AssassinAbilityComponent{DodgeBase: abilities.AssassinDodgeChance})
	case types.EnemyHealer:
		ecs.AddComponent(em, id, &components.HealerAbilityComponent{})
	case types.EnemyMinotaurBoss:
		ecs.AddComponent(em, id, &components.MinotaurAbilityComponent{StunTimer: abilities.MinotaurStunInterval})
	case types.EnemyDemonBoss:
		ecs.AddComponent(em, id, &components.DemonAbilityComponent{})
	}

	return id, nil
}
