package systems

import (
	"math"
	"sort"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/types"
)

const (
	// chainDamageFraction 连锁目标承受的伤害比例
	chainDamageFraction = 0.5
	// splashDamageFraction 范围溅射伤害比例
	splashDamageFraction = 0.5
	// railLength 贯穿判定的弹道长度（像素）
	railLength = 200.0
	// railHalfWidth 贯穿判定的弹道半宽（像素）
	railHalfWidth = 14.0
)

// ProjectileSystem 投射物与冰塔激光的推进与命中结算
type ProjectileSystem struct {
	bf     *Battlefield
	pool   *ProjectilePool
	lasers *LaserSet
	active []*Projectile

	scratch []ecs.EntityID
}

// NewProjectileSystem 创建投射物系统
func NewProjectileSystem(bf *Battlefield, pool *ProjectilePool, lasers *LaserSet) *ProjectileSystem {
	return &ProjectileSystem{
		bf:     bf,
		pool:   pool,
		lasers: lasers,
		active: make([]*Projectile, 0, 64),
	}
}

// Add 接收防御塔本帧发射的投射物
func (s *ProjectileSystem) Add(projectiles ...*Projectile) {
	s.active = append(s.active, projectiles...)
}

// Active 返回飞行中的投射物（只读）
func (s *ProjectileSystem) Active() []*Projectile {
	return s.active
}

// Update 推进所有投射物，结算完毕的归还对象池；随后推进激光
func (s *ProjectileSystem) Update(dt float64) {
	kept := s.active[:0]
	for _, p := range s.active {
		if s.Step(p, dt) {
			kept = append(kept, p)
			continue
		}
		s.pool.Release(p)
	}
	for i := len(kept); i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = kept

	s.lasers.Update(s.bf, dt)
}

// Clear 归还所有飞行中的投射物
func (s *ProjectileSystem) Clear() {
	for _, p := range s.active {
		s.pool.Release(p)
	}
	s.active = s.active[:0]
}

// Step 推进单个投射物
//
// 返回：
//   - bool: 仍在飞行时为 true；命中结算完毕或目标失效（落空）时为 false
func (s *ProjectileSystem) Step(p *Projectile, dt float64) bool {
	if !IsAlive(s.bf.EM, p.TargetID) {
		return false
	}
	tpos, _ := ecs.GetComponent[*components.PositionComponent](s.bf.EM, p.TargetID)
	dx, dy := tpos.X-p.X, tpos.Y-p.Y
	d := math.Hypot(dx, dy)
	travel := p.Speed * dt

	if d < travel || d == 0 {
		if d > 0 {
			p.DirX, p.DirY = dx/d, dy/d
		}
		p.X, p.Y = tpos.X, tpos.Y
		return s.resolve(p)
	}

	p.DirX, p.DirY = dx/d, dy/d
	p.X += p.DirX * travel
	p.Y += p.DirY * travel
	return true
}

// resolve 在命中点一次性结算全部效果
// 返回 true 表示投射物弹射到新目标继续飞行
func (s *ProjectileSystem) resolve(p *Projectile) bool {
	em := s.bf.EM
	primary := p.TargetID
	p.hits = append(p.hits, primary)

	if s.strike(p, primary, p.Damage) {
		st, _ := ecs.GetComponent[*components.StatusComponent](em, primary)
		if p.MarkStrength > 0 && st != nil {
			s.bf.Status.ApplyMark(st, p.MarkDuration, p.MarkStrength)
		}
		if p.ExecuteThreshold > 0 {
			if h, ok := ecs.GetComponent[*components.HealthComponent](em, primary); ok && h.Current > 0 && h.Fraction() <= p.ExecuteThreshold {
				h.Current = 0
			}
		}
	}

	if p.ChainCount > 0 {
		s.chain(p, primary)
	}
	if p.AoERadius > 0 {
		s.splash(p, primary)
	}
	if p.RailPierce > 0 {
		s.rail(p, primary)
	}

	if p.Bounces > 0 {
		if next, ok := s.nearestUnhit(p, p.X, p.Y, p.BounceRadius); ok {
			p.Bounces--
			p.TargetID = next
			return true
		}
	}
	return false
}

// strike 对单个敌人结算投射物伤害（穿甲与碎冰在此处理）
func (s *ProjectileSystem) strike(p *Projectile, id ecs.EntityID, amount float64) bool {
	em := s.bf.EM
	st, _ := ecs.GetComponent[*components.StatusComponent](em, id)
	hit := Hit{
		Amount: amount * ShatterMultiplier(st, p.ShatterBonus),
		Type:   p.DamageType,
		Source: types.SourceProjectile,
	}
	if p.ArmorPierce > 0 {
		if r, ok := ecs.GetComponent[*components.ResistComponent](em, id); ok {
			hit.ResistOverride = r.For(p.DamageType) * (1 - p.ArmorPierce)
			hit.HasOverride = true
		}
	}
	return s.bf.Damage.TakeDamage(id, hit)
}

// chain 从主目标依次跳向最近的未命中敌人
func (s *ProjectileSystem) chain(p *Projectile, primary ecs.EntityID) {
	em := s.bf.EM
	from, _ := ecs.GetComponent[*components.StatusComponent](em, primary)
	cpos, _ := ecs.GetComponent[*components.PositionComponent](em, primary)
	cx, cy := cpos.X, cpos.Y

	for i := 0; i < p.ChainCount; i++ {
		next, ok := s.nearestUnhit(p, cx, cy, p.ChainRadius)
		if !ok {
			return
		}
		p.hits = append(p.hits, next)
		s.strike(p, next, p.Damage*chainDamageFraction)
		if p.StatusSpread && from != nil {
			if to, ok := ecs.GetComponent[*components.StatusComponent](em, next); ok {
				s.bf.Status.SpreadFrom(from, to)
			}
		}
		npos, _ := ecs.GetComponent[*components.PositionComponent](em, next)
		cx, cy = npos.X, npos.Y
	}
}

// splash 命中点周围的范围伤害（主目标除外）
func (s *ProjectileSystem) splash(p *Projectile, primary ecs.EntityID) {
	s.scratch = s.bf.EnemiesInRange(p.X, p.Y, p.AoERadius, s.scratch)
	for _, id := range s.scratch {
		if id == primary {
			continue
		}
		s.strike(p, id, p.Damage*splashDamageFraction)
	}
}

// rail 沿飞行方向贯穿前方的敌人
func (s *ProjectileSystem) rail(p *Projectile, primary ecs.EntityID) {
	em := s.bf.EM
	type railHit struct {
		id    ecs.EntityID
		along float64
	}
	var hits []railHit

	s.scratch = s.bf.EnemiesInRange(p.X, p.Y, railLength+railHalfWidth, s.scratch)
	for _, id := range s.scratch {
		if id == primary {
			continue
		}
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		rx, ry := pos.X-p.X, pos.Y-p.Y
		along := rx*p.DirX + ry*p.DirY
		if along <= 0 || along > railLength {
			continue
		}
		if math.Abs(rx*p.DirY-ry*p.DirX) > railHalfWidth {
			continue
		}
		hits = append(hits, railHit{id: id, along: along})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].along < hits[j].along })
	for i, h := range hits {
		if i >= p.RailPierce {
			break
		}
		s.strike(p, h.id, p.Damage)
	}
}

// nearestUnhit 返回半径内距离最近且未被本投射物命中过的敌人
func (s *ProjectileSystem) nearestUnhit(p *Projectile, x, y, r float64) (ecs.EntityID, bool) {
	s.scratch = s.bf.EnemiesInRange(x, y, r, s.scratch)
	var best ecs.EntityID
	bestDist := math.Inf(1)
	for _, id := range s.scratch {
		if containsID(p.hits, id) {
			continue
		}
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.bf.EM, id)
		if d := Distance(x, y, pos.X, pos.Y); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, best != 0
}

func containsID(ids []ecs.EntityID, id ecs.EntityID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
