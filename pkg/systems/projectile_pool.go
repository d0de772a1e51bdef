package systems

import (
	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/types"
)

// Projectile 追踪型投射物
// 发射时从防御塔复制全部命中效果，之后塔被出售或升级都不影响已发射的投射物
type Projectile struct {
	TowerID  ecs.EntityID
	TargetID ecs.EntityID
	X, Y     float64
	DirX     float64 // 飞行方向（单位向量），贯穿判定使用
	DirY     float64
	Speed    float64

	Damage       float64
	DamageType   types.DamageType
	ArmorPierce  float64
	ShatterBonus float64

	Bounces      int
	BounceRadius float64
	ChainCount   int
	ChainRadius  float64
	StatusSpread bool
	AoERadius    float64

	MarkStrength     float64
	MarkDuration     float64
	ExecuteThreshold float64
	RailPierce       int

	hits []ecs.EntityID // 已命中的目标（弹射不会重复选择）
}

// ProjectilePool 投射物对象池
type ProjectilePool struct {
	free     []*Projectile
	created  int
	acquired int
}

// NewProjectilePool 创建对象池并预分配
func NewProjectilePool(prealloc int) *ProjectilePool {
	pool := &ProjectilePool{free: make([]*Projectile, 0, prealloc)}
	for i := 0; i < prealloc; i++ {
		pool.free = append(pool.free, &Projectile{})
		pool.created++
	}
	return pool
}

// Acquire 取出一个已清零的投射物
func (pp *ProjectilePool) Acquire() *Projectile {
	pp.acquired++
	n := len(pp.free)
	if n == 0 {
		pp.created++
		return &Projectile{hits: make([]ecs.EntityID, 0, 4)}
	}
	p := pp.free[n-1]
	pp.free = pp.free[:n-1]
	hits := p.hits[:0]
	*p = Projectile{hits: hits}
	return p
}

// Release 归还投射物
func (pp *ProjectilePool) Release(p *Projectile) {
	if p == nil {
		return
	}
	pp.free = append(pp.free, p)
}

// Available 返回池中空闲数量
func (pp *ProjectilePool) Available() int {
	return len(pp.free)
}

// Created 返回累计分配的投射物数量
func (pp *ProjectilePool) Created() int {
	return pp.created
}

// Fire 从防御塔向目标发射一枚投射物
func (pp *ProjectilePool) Fire(towerID ecs.EntityID, tower *components.TowerComponent, damage, x, y, speed float64, targetID ecs.EntityID, tx, ty float64) *Projectile {
	p := pp.Acquire()
	p.TowerID = towerID
	p.TargetID = targetID
	p.X, p.Y = x, y
	p.Speed = speed
	if d := Distance(x, y, tx, ty); d > 0 {
		p.DirX, p.DirY = (tx-x)/d, (ty-y)/d
	}

	p.Damage = damage
	p.DamageType = tower.DamageType
	p.ArmorPierce = tower.ArmorPierce
	p.ShatterBonus = tower.ShatterBonus
	p.Bounces = tower.Bounces
	p.BounceRadius = tower.BounceRadius
	p.ChainCount = tower.ChainCount
	p.ChainRadius = tower.ChainRadius
	p.StatusSpread = tower.StatusSpread
	p.AoERadius = tower.AoERadius
	p.MarkStrength = tower.MarkStrength
	p.MarkDuration = tower.MarkDuration
	p.ExecuteThreshold = tower.ExecuteThreshold
	p.RailPierce = tower.RailPierce
	return p
}
