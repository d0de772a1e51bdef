package systems

import (
	"math"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/entities"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
	"github.com/sirupsen/logrus"
)

// SentinelSystem 哨兵系统
//
// 状态机：冷却/待机 ⇄ 屏障激活
//   - 冷却归零且射程内有与哨兵四邻相接的敌人时，在该敌人所在格升起屏障
//   - 屏障期间推开并减速站在屏障格上的敌人，可选反伤与周期击退
//   - 屏障到期后进入冷却，拥有过载升级时先造成一次范围爆发
type SentinelSystem struct {
	bf    *Battlefield
	stats config.SentinelStats

	candidates []ecs.EntityID
}

// NewSentinelSystem 创建哨兵系统
func NewSentinelSystem(bf *Battlefield, stats config.SentinelStats) *SentinelSystem {
	return &SentinelSystem{bf: bf, stats: stats}
}

// Update 更新所有哨兵
func (s *SentinelSystem) Update(dt float64) {
	em := s.bf.EM
	for _, id := range ecs.GetEntitiesWith2[*components.SentinelComponent, *components.StructureComponent](em) {
		if em.IsPendingDestroy(id) {
			continue
		}
		if up, ok := ecs.GetComponent[*components.UpgradeComponent](em, id); ok && up.Sold {
			continue
		}
		sentinel, _ := ecs.GetComponent[*components.SentinelComponent](em, id)
		st, _ := ecs.GetComponent[*components.StructureComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		s.updateSentinel(id, sentinel, st.Tile, pos, dt)
	}
}

func (s *SentinelSystem) updateSentinel(id ecs.EntityID, sn *components.SentinelComponent, tile maze.Point, pos *components.PositionComponent, dt float64) {
	if sn.CooldownLeft > 0 {
		sn.CooldownLeft = math.Max(0, sn.CooldownLeft-dt)
	}

	if sn.Active {
		sn.Timer += dt
		sn.PulseTimer += dt
		if sn.Timer >= sn.Duration {
			s.expire(id, sn, tile, pos)
			return
		}
		s.block(sn, dt)
		s.pulse(sn, pos)
		return
	}

	if sn.CooldownLeft == 0 {
		s.tryActivate(id, sn, tile, pos)
	}
}

// tryActivate 选择射程内距离最近且与哨兵四邻相接的敌人所在格作为屏障格
func (s *SentinelSystem) tryActivate(id ecs.EntityID, sn *components.SentinelComponent, tile maze.Point, pos *components.PositionComponent) {
	s.candidates = s.bf.EnemiesInRange(pos.X, pos.Y, sn.Range, s.candidates)

	var barrier maze.Point
	found := false
	best := math.Inf(1)
	for _, eid := range s.candidates {
		et, ok := s.bf.EnemyTile(eid)
		if !ok || et.Manhattan(tile) != 1 {
			continue
		}
		epos, _ := ecs.GetComponent[*components.PositionComponent](s.bf.EM, eid)
		if d := Distance(pos.X, pos.Y, epos.X, epos.Y); d < best {
			best, barrier, found = d, et, true
		}
	}
	if !found {
		return
	}

	sn.Active = true
	sn.BarrierTile = barrier
	sn.Timer = 0
	sn.PulseTimer = 0
	logger.Log.WithFields(logrus.Fields{
		"sentinel": id,
		"barrier":  barrier,
	}).Debug("[SentinelSystem] Barrier raised")
}

// block 推开并减速屏障格上的敌人
func (s *SentinelSystem) block(sn *components.SentinelComponent, dt float64) {
	em := s.bf.EM
	cx, cy := entities.TileCenter(sn.BarrierTile, s.bf.TileSize)
	s.candidates = s.bf.EnemiesInRange(cx, cy, s.bf.TileSize, s.candidates)

	for _, eid := range s.candidates {
		if et, ok := s.bf.EnemyTile(eid); !ok || et != sn.BarrierTile {
			continue
		}
		epos, _ := ecs.GetComponent[*components.PositionComponent](em, eid)
		dx, dy := epos.X-cx, epos.Y-cy
		if d := math.Hypot(dx, dy); d > 0 {
			s.bf.Displacements.Push(eid, dx/d*s.stats.BarrierPush, dy/d*s.stats.BarrierPush)
		}
		if st, ok := ecs.GetComponent[*components.StatusComponent](em, eid); ok {
			s.bf.Status.AddSlow(st, s.stats.BarrierSlow)
		}
		if sn.ReflectDPS > 0 {
			s.bf.Damage.TakeDamage(eid, Hit{Amount: sn.ReflectDPS * dt, Type: types.DamageMagic, Source: types.SourceSentinel, Continuous: true})
		}
	}
}

// pulse 按间隔击退哨兵附近的敌人
func (s *SentinelSystem) pulse(sn *components.SentinelComponent, pos *components.PositionComponent) {
	if !sn.PulseEnabled || sn.PulseTimer < sn.PulseInterval {
		return
	}
	sn.PulseTimer = 0

	s.candidates = s.bf.EnemiesInRange(pos.X, pos.Y, s.stats.PulseRadius, s.candidates)
	for _, eid := range s.candidates {
		epos, _ := ecs.GetComponent[*components.PositionComponent](s.bf.EM, eid)
		dx, dy := epos.X-pos.X, epos.Y-pos.Y
		if d := math.Hypot(dx, dy); d > 0 {
			s.bf.Displacements.Push(eid, dx/d*s.stats.PulseForce, dy/d*s.stats.PulseForce)
		}
	}
}

// expire 屏障到期：可选过载爆发，然后进入冷却
func (s *SentinelSystem) expire(id ecs.EntityID, sn *components.SentinelComponent, tile maze.Point, pos *components.PositionComponent) {
	if sn.Overload {
		s.candidates = s.bf.EnemiesInRange(pos.X, pos.Y, s.stats.OverloadRadius, s.candidates)
		for _, eid := range s.candidates {
			s.bf.Damage.TakeDamage(eid, Hit{Amount: s.stats.OverloadDamage, Type: types.DamageMagic, Source: types.SourceSentinel})
		}
		logger.Log.Debugf("[SentinelSystem] Sentinel %d overloaded, hit %d enemies", id, len(s.candidates))
	}
	sn.Active = false
	sn.Timer = 0
	sn.CooldownLeft = sn.Cooldown
	sn.BarrierTile = tile
}
