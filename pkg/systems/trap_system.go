package systems

import (
	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
)

// 火焰陷阱距离衰减（切比雪夫距离 0 / 1 / 2 / 光环边缘）
var fireBandFactors = [...]float64{1.0, 0.5, 0.25}

const (
	fireOuterBandFactor = 0.15

	burnSpreadRadius   = 40.0 // 燃烧蔓延半径（像素）
	burnSpreadFraction = 0.2  // 蔓延伤害占光环每帧伤害的比例
	onKillRadius       = 60.0 // 凤凰/引爆的作用半径（像素）
	detonateDamage     = 40.0
)

// TrapSystem 陷阱系统
//
// 火焰陷阱每帧对方形光环内的敌人按距离分档造成魔法伤害；
// 尖刺陷阱的计时器持续累加，格上有敌人且到达间隔时触发一次物理伤害
type TrapSystem struct {
	bf *Battlefield

	candidates []ecs.EntityID
	nearby     []ecs.EntityID
}

// NewTrapSystem 创建陷阱系统
func NewTrapSystem(bf *Battlefield) *TrapSystem {
	return &TrapSystem{bf: bf}
}

// Update 更新所有陷阱
func (s *TrapSystem) Update(dt float64) {
	em := s.bf.EM
	for _, id := range ecs.GetEntitiesWith2[*components.TrapComponent, *components.StructureComponent](em) {
		if em.IsPendingDestroy(id) {
			continue
		}
		if up, ok := ecs.GetComponent[*components.UpgradeComponent](em, id); ok && up.Sold {
			continue
		}
		trap, _ := ecs.GetComponent[*components.TrapComponent](em, id)
		st, _ := ecs.GetComponent[*components.StructureComponent](em, id)

		switch trap.Type {
		case types.TrapFire:
			s.updateFire(trap, st.Tile, dt)
		case types.TrapSpikes:
			s.updateSpikes(id, trap, st.Tile, dt)
		}
	}
}

// enemiesNear 返回切比雪夫距离 radius 格内的存活敌人及其距离
func (s *TrapSystem) enemiesNear(tile maze.Point, radius int) ([]ecs.EntityID, []int) {
	cx, cy := s.bf.TileSize*(float64(tile.X)+0.5), s.bf.TileSize*(float64(tile.Y)+0.5)
	r := s.bf.TileSize * (float64(radius) + 1) * 1.5
	s.candidates = s.bf.EnemiesInRange(cx, cy, r, s.candidates)

	ids := make([]ecs.EntityID, 0, len(s.candidates))
	dists := make([]int, 0, len(s.candidates))
	for _, id := range s.candidates {
		et, ok := s.bf.EnemyTile(id)
		if !ok {
			continue
		}
		if d := et.Chebyshev(tile); d <= radius {
			ids = append(ids, id)
			dists = append(dists, d)
		}
	}
	return ids, dists
}

func (s *TrapSystem) updateFire(trap *components.TrapComponent, tile maze.Point, dt float64) {
	em := s.bf.EM
	perTick := trap.DPS * dt
	ids, dists := s.enemiesNear(tile, trap.AuraRadius)

	for i, id := range ids {
		if !IsAlive(em, id) {
			continue
		}
		d := dists[i]
		factor := fireOuterBandFactor
		if d < len(fireBandFactors) {
			factor = fireBandFactors[d]
		}

		health, _ := ecs.GetComponent[*components.HealthComponent](em, id)
		before := health.Current
		s.bf.Damage.TakeDamage(id, Hit{Amount: perTick * factor, Type: types.DamageMagic, Source: types.SourceTrap, Continuous: true})

		st, _ := ecs.GetComponent[*components.StatusComponent](em, id)
		if trap.BurnSpread && st != nil {
			switch d {
			case 0:
				s.bf.Status.ApplyBurn(st, 2.5, 1.0)
			case 1:
				s.bf.Status.ApplyBurn(st, 2.0, 0.7)
			}
		}

		if before > 0 && health.Current <= 0 {
			s.onFireKill(trap, id)
			continue
		}

		if trap.BurnSpread && st != nil && st.Burning {
			s.spreadBurn(id, perTick)
		}
	}
}

// spreadBurn 燃烧中的敌人向附近敌人溅射伤害并点燃
func (s *TrapSystem) spreadBurn(source ecs.EntityID, perTick float64) {
	em := s.bf.EM
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, source)
	s.nearby = s.bf.EnemiesInRange(pos.X, pos.Y, burnSpreadRadius, s.nearby)
	for _, other := range s.nearby {
		if other == source {
			continue
		}
		s.bf.Damage.TakeDamage(other, Hit{Amount: perTick * burnSpreadFraction, Type: types.DamageMagic, Source: types.SourceTrap, Continuous: true})
		if st, ok := ecs.GetComponent[*components.StatusComponent](em, other); ok {
			s.bf.Status.ApplyBurn(st, 1.5, 0.5)
		}
	}
}

// onFireKill 光环内击杀：凤凰点燃周围，引爆造成范围伤害
func (s *TrapSystem) onFireKill(trap *components.TrapComponent, victim ecs.EntityID) {
	if !trap.Phoenix && !trap.Detonate {
		return
	}
	em := s.bf.EM
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, victim)
	s.nearby = s.bf.EnemiesInRange(pos.X, pos.Y, onKillRadius, s.nearby)
	for _, other := range s.nearby {
		if other == victim {
			continue
		}
		if trap.Phoenix {
			if st, ok := ecs.GetComponent[*components.StatusComponent](em, other); ok {
				s.bf.Status.ApplyBurn(st, 3.0, 1.0)
			}
		}
		if trap.Detonate {
			s.bf.Damage.TakeDamage(other, Hit{Amount: detonateDamage, Type: types.DamageMagic, Source: types.SourceTrap})
		}
	}
}

func (s *TrapSystem) updateSpikes(id ecs.EntityID, trap *components.TrapComponent, tile maze.Point, dt float64) {
	trap.Timer += dt

	radius := 0
	if trap.QuakeFraction > 0 {
		radius = 2
	} else if trap.ClusterFraction > 0 {
		radius = 1
	}
	ids, dists := s.enemiesNear(tile, radius)

	onTile := 0
	for _, d := range dists {
		if d == 0 {
			onTile++
		}
	}
	if onTile == 0 || trap.Timer < trap.Interval {
		return
	}
	trap.Timer = 0

	em := s.bf.EM
	damage := trap.Damage * s.bf.Effects.SpikeDamageMult
	for i, eid := range ids {
		if dists[i] == 0 {
			s.bf.Damage.TakeDamage(eid, Hit{Amount: damage, Type: types.DamagePhysical, Source: types.SourceTrap})
			if st, ok := ecs.GetComponent[*components.StatusComponent](em, eid); ok {
				if trap.BleedDuration > 0 {
					s.bf.Status.ApplyBleed(st, trap.BleedDuration, 1.0)
				}
				if trap.ImpaleDuration > 0 {
					s.bf.Status.ApplyImpale(st, trap.ImpaleDuration)
				}
			}
			continue
		}
		if trap.QuakeFraction > 0 {
			s.bf.Damage.TakeDamage(eid, Hit{Amount: damage * trap.QuakeFraction, Type: types.DamagePhysical, Source: types.SourceTrap})
		}
		if trap.ClusterFraction > 0 && dists[i] == 1 {
			s.bf.Damage.TakeDamage(eid, Hit{Amount: damage * trap.ClusterFraction, Type: types.DamagePhysical, Source: types.SourceTrap})
		}
	}
	logger.Log.Debugf("[TrapSystem] Spike trap %d triggered on %d enemies", id, onTile)
}
