package systems

import (
	"math"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/types"
)

// pullDeadZone 距离塔心小于此值的敌人不再被拉拽（像素）
const pullDeadZone = 20.0

// TowerSystem 防御塔系统
//
// 普通塔按冷却发射投射物；冰塔维护持续激光，没有离散冷却
type TowerSystem struct {
	bf              *Battlefield
	pool            *ProjectilePool
	lasers          *LaserSet
	projectileSpeed float64

	candidates []ecs.EntityID
	fired      []*Projectile
}

// NewTowerSystem 创建防御塔系统
func NewTowerSystem(bf *Battlefield, pool *ProjectilePool, lasers *LaserSet, projectileSpeed float64) *TowerSystem {
	return &TowerSystem{
		bf:              bf,
		pool:            pool,
		lasers:          lasers,
		projectileSpeed: projectileSpeed,
	}
}

// Update 更新所有防御塔
//
// 返回：
//   - []*Projectile: 本帧新发射的投射物（切片在下次调用前有效）
func (s *TowerSystem) Update(dt float64) []*Projectile {
	s.fired = s.fired[:0]
	em := s.bf.EM

	for _, id := range ecs.GetEntitiesWith2[*components.TowerComponent, *components.PositionComponent](em) {
		if em.IsPendingDestroy(id) {
			continue
		}
		if up, ok := ecs.GetComponent[*components.UpgradeComponent](em, id); ok && up.Sold {
			continue
		}
		tower, _ := ecs.GetComponent[*components.TowerComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)

		if tower.StunTimer > 0 {
			tower.StunTimer = math.Max(0, tower.StunTimer-dt)
			s.lasers.Drop(id)
			continue
		}
		tower.Cooldown = math.Max(0, tower.Cooldown-dt)

		s.candidates = s.bf.EnemiesInRange(pos.X, pos.Y, EffectiveRange(tower, s.bf.Effects), s.candidates)

		if tower.Type == types.TowerIce {
			s.updateIce(id, tower, dt)
			continue
		}

		if tower.PullSpeed > 0 {
			s.pull(pos, tower.PullSpeed*dt)
		}

		if tower.Cooldown > 0 || len(s.candidates) == 0 {
			continue
		}
		s.fire(id, tower, pos)
	}
	return s.fired
}

// fire 向排名靠前的目标各发射一枚投射物
func (s *TowerSystem) fire(id ecs.EntityID, tower *components.TowerComponent, pos *components.PositionComponent) {
	count := tower.ProjectileCount
	if count < 1 {
		count = 1
	}
	targets := s.candidates
	if count == 1 {
		best, _ := s.bf.SelectTarget(targets, tower.Targeting)
		targets = []ecs.EntityID{best}
	} else {
		targets = s.bf.RankTargets(targets, tower.Targeting)
		if len(targets) > count {
			targets = targets[:count]
		}
	}

	damage := EffectiveDamage(tower, s.bf.Effects)
	for _, target := range targets {
		tpos, _ := ecs.GetComponent[*components.PositionComponent](s.bf.EM, target)
		p := s.pool.Fire(id, tower, damage, pos.X, pos.Y, s.projectileSpeed, target, tpos.X, tpos.Y)
		s.fired = append(s.fired, p)
	}
	tower.Cooldown = EffectiveInterval(tower, s.bf.Effects)
	logger.Log.Debugf("[TowerSystem] Tower %d fired %d projectiles", id, len(targets))
}

// pull 把射程内敌人拉向塔心（写入位移缓冲区）
func (s *TowerSystem) pull(pos *components.PositionComponent, dist float64) {
	for _, eid := range s.candidates {
		epos, _ := ecs.GetComponent[*components.PositionComponent](s.bf.EM, eid)
		dx, dy := pos.X-epos.X, pos.Y-epos.Y
		d := math.Hypot(dx, dy)
		if d <= pullDeadZone {
			continue
		}
		s.bf.Displacements.Push(eid, dx/d*dist, dy/d*dist)
	}
}

// updateIce 冰塔：范围减速、绝对零度与激光同步
func (s *TowerSystem) updateIce(id ecs.EntityID, tower *components.TowerComponent, dt float64) {
	if len(s.candidates) == 0 {
		s.lasers.Drop(id)
		return
	}
	em := s.bf.EM

	for _, eid := range s.candidates {
		st, ok := ecs.GetComponent[*components.StatusComponent](em, eid)
		if !ok {
			continue
		}
		if tower.SlowAoERate > 0 {
			s.bf.Status.AddSlow(st, tower.SlowAoERate*dt)
		}
		if tower.AbsoluteZero {
			s.bf.Status.AddSlow(st, s.bf.Status.cfg.FreezeThreshold)
		}
	}

	targets := s.candidates
	if tower.MultiLaser {
		targets = s.bf.RankTargets(append([]ecs.EntityID(nil), targets...), tower.Targeting)
	} else {
		best, _ := s.bf.SelectTarget(targets, tower.Targeting)
		targets = []ecs.EntityID{best}
	}
	s.lasers.Sync(id, tower.FreezeDelay, targets)
}
