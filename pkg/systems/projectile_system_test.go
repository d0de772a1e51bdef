package systems

import (
	"testing"

	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
)

// projectileOn 在目标当前位置生成一枚投射物，下一次推进立即命中
func (r *combatRig) projectileOn(target ecs.EntityID, damage float64, damageType types.DamageType) *Projectile {
	pos := r.position(target)
	p := r.pool.Acquire()
	p.TargetID = target
	p.X, p.Y = pos.X, pos.Y
	p.DirX = 1
	p.Speed = r.structCfg.ProjectileSpeed
	p.Damage = damage
	p.DamageType = damageType
	return p
}

// TestProjectileChain 连锁按最近未命中顺序跳跃，伤害减半
func TestProjectileChain(t *testing.T) {
	r := newCombatRig(t)
	a := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 5, Y: 2})
	b := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 7, Y: 2})
	c := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 9, Y: 2})
	far := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 18, Y: 2})
	r.bf.RebuildSpatialIndex()

	p := r.projectileOn(a, 20, types.DamageMagic)
	p.ChainCount, p.ChainRadius = 3, 100
	if r.projectiles.Step(p, 0.016) {
		t.Fatal("projectile without bounces should resolve on impact")
	}

	want := map[ecs.EntityID]float64{a: 60, b: 70, c: 70, far: 80}
	for id, hp := range want {
		if got := r.health(id).Current; !almostEqual(got, hp) {
			t.Errorf("enemy %d: expected hp %.1f, got %.2f", id, hp, got)
		}
	}
}

// TestProjectileChainSpreadsStatus 连锁把主目标的燃烧传播给下一个目标
func TestProjectileChainSpreadsStatus(t *testing.T) {
	r := newCombatRig(t)
	a := r.spawnEnemy(t, types.EnemyTank, maze.Point{X: 5, Y: 2})
	b := r.spawnEnemy(t, types.EnemyTank, maze.Point{X: 7, Y: 2})
	r.bf.Status.ApplyBurn(r.status(a), 3, 1.5)
	r.bf.RebuildSpatialIndex()

	p := r.projectileOn(a, 20, types.DamageMagic)
	p.ChainCount, p.ChainRadius, p.StatusSpread = 1, 100, true
	r.projectiles.Step(p, 0.016)

	st := r.status(b)
	if !st.Burning {
		t.Fatal("chained target should be burning")
	}
	if got := st.Strength(types.EffectBurn); !almostEqual(got, 1.5) {
		t.Errorf("Expected spread burn strength 1.5, got %.2f", got)
	}
}

// TestProjectileBounce 命中后弹射到半径内最近的未命中敌人
func TestProjectileBounce(t *testing.T) {
	r := newCombatRig(t)
	a := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 5, Y: 2})
	b := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 7, Y: 2})
	r.bf.RebuildSpatialIndex()

	p := r.projectileOn(a, 20, types.DamageMagic)
	p.Bounces, p.BounceRadius = 1, 90

	if !r.projectiles.Step(p, 0.016) {
		t.Fatal("projectile should keep flying after the first impact")
	}
	if p.TargetID != b || p.Bounces != 0 {
		t.Fatalf("Expected retarget to %d with 0 bounces left, got %d/%d", b, p.TargetID, p.Bounces)
	}
	if r.projectiles.Step(p, 0.2) {
		t.Error("projectile should resolve on the bounce target")
	}
	if got := r.health(b).Current; !almostEqual(got, 60) {
		t.Errorf("bounce should deal full damage, hp=%.2f", got)
	}
	if got := r.health(a).Current; !almostEqual(got, 60) {
		t.Errorf("primary should be hit once, hp=%.2f", got)
	}
}

// TestProjectileSplash 范围溅射对周围敌人造成一半伤害
func TestProjectileSplash(t *testing.T) {
	r := newCombatRig(t)
	a := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 5, Y: 2})
	b := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 7, Y: 2})
	far := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 15, Y: 2})
	r.bf.RebuildSpatialIndex()

	p := r.projectileOn(a, 20, types.DamageMagic)
	p.AoERadius = 90
	r.projectiles.Step(p, 0.016)

	if got := r.health(a).Current; !almostEqual(got, 60) {
		t.Errorf("primary: expected 60, got %.2f", got)
	}
	if got := r.health(b).Current; !almostEqual(got, 70) {
		t.Errorf("splash: expected 70, got %.2f", got)
	}
	if got := r.health(far).Current; !almostEqual(got, 80) {
		t.Errorf("outside radius: expected 80, got %.2f", got)
	}
}

// TestProjectileRail 贯穿只命中飞行方向前方最近的若干敌人
func TestProjectileRail(t *testing.T) {
	r := newCombatRig(t)
	behind := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 3, Y: 2})
	a := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 5, Y: 2})
	b := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 7, Y: 2})
	c := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 9, Y: 2})
	r.bf.RebuildSpatialIndex()

	p := r.projectileOn(a, 20, types.DamageMagic)
	p.RailPierce = 1
	r.projectiles.Step(p, 0.016)

	want := map[ecs.EntityID]float64{a: 60, b: 60, c: 80, behind: 80}
	for id, hp := range want {
		if got := r.health(id).Current; !almostEqual(got, hp) {
			t.Errorf("enemy %d: expected hp %.1f, got %.2f", id, hp, got)
		}
	}
}

// TestProjectileMarkAndExecute 标记放大后续伤害，低血目标被处决
func TestProjectileMarkAndExecute(t *testing.T) {
	t.Run("标记", func(t *testing.T) {
		r := newCombatRig(t)
		e := r.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 5, Y: 2})
		r.bf.RebuildSpatialIndex()

		p := r.projectileOn(e, 20, types.DamageMagic)
		p.MarkStrength, p.MarkDuration = 0.5, 4
		r.projectiles.Step(p, 0.016)
		if got := r.health(e).Current; !almostEqual(got, 60) {
			t.Fatalf("mark applies after the hit, expected 60, got %.2f", got)
		}

		r.projectiles.Step(r.projectileOn(e, 20, types.DamageMagic), 0.016)
		if got := r.health(e).Current; !almostEqual(got, 30) {
			t.Errorf("marked target takes 150%%, expected 30, got %.2f", got)
		}
	})

	t.Run("处决阈值", func(t *testing.T) {
		tests := []struct {
			name   string
			before float64
			want   float64
		}{
			{"高于阈值", 50, 43},
			{"低于阈值", 40, 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := newCombatRig(t)
				e := r.spawnEnemy(t, types.EnemyTank, maze.Point{X: 5, Y: 2})
				r.health(e).Current = tt.before
				r.bf.RebuildSpatialIndex()

				p := r.projectileOn(e, 10, types.DamagePhysical)
				p.ExecuteThreshold = 0.15
				r.projectiles.Step(p, 0.016)
				if got := r.health(e).Current; !almostEqual(got, tt.want) {
					t.Errorf("Expected hp %.1f, got %.2f", tt.want, got)
				}
			})
		}
	})
}

// TestProjectileArmorPierce 穿甲按比例削减目标抗性
func TestProjectileArmorPierce(t *testing.T) {
	r := newCombatRig(t)
	e := r.spawnEnemy(t, types.EnemyTank, maze.Point{X: 5, Y: 2})
	r.bf.RebuildSpatialIndex()

	p := r.projectileOn(e, 20, types.DamagePhysical)
	p.ArmorPierce = 0.6
	r.projectiles.Step(p, 0.016)

	// 0.30 × (1 - 0.6) = 0.12
	if got := r.health(e).Current; !almostEqual(got, 230-20*0.88) {
		t.Errorf("Expected hp %.2f, got %.2f", 230-20*0.88, got)
	}
}

// TestProjectileFlight 投射物按速度飞行，目标消失时落空
func TestProjectileFlight(t *testing.T) {
	t.Run("飞行中", func(t *testing.T) {
		r := newCombatRig(t)
		e := r.spawnEnemy(t, types.EnemyTank, maze.Point{X: 15, Y: 2})
		p := r.pool.Acquire()
		p.TargetID, p.Speed, p.Damage = e, 300, 20
		p.X, p.Y = 10, 50

		if !r.projectiles.Step(p, 0.1) {
			t.Fatal("projectile should still be flying")
		}
		if !almostEqual(p.X, 40) || !almostEqual(p.Y, 50) {
			t.Errorf("Expected position (40,50), got (%.2f,%.2f)", p.X, p.Y)
		}
		if r.health(e).Current != 230 {
			t.Error("no damage before impact")
		}
	})

	t.Run("目标死亡后落空", func(t *testing.T) {
		r := newCombatRig(t)
		e := r.spawnEnemy(t, types.EnemyTank, maze.Point{X: 15, Y: 2})
		p := r.pool.Acquire()
		p.TargetID, p.Speed, p.Damage = e, 300, 20
		r.projectiles.Add(p)

		r.health(e).Current = 0
		r.projectiles.Update(0.016)
		if len(r.projectiles.Active()) != 0 {
			t.Error("projectile should be dropped when its target dies")
		}
	})
}

// TestProjectilePoolReuse 结算后的投射物回到对象池并被复用
func TestProjectilePoolReuse(t *testing.T) {
	r := newCombatRig(t)
	pool := NewProjectilePool(2)
	ps := NewProjectileSystem(r.bf, pool, r.lasers)
	if pool.Available() != 2 || pool.Created() != 2 {
		t.Fatalf("Expected 2 preallocated, got available=%d created=%d", pool.Available(), pool.Created())
	}

	e := r.spawnEnemy(t, types.EnemyTank, maze.Point{X: 5, Y: 2})
	r.bf.RebuildSpatialIndex()
	pos := r.position(e)
	for i := 0; i < 3; i++ {
		p := pool.Acquire()
		p.TargetID, p.Speed, p.Damage = e, 300, 1
		p.X, p.Y = pos.X, pos.Y
		ps.Add(p)
	}
	if pool.Available() != 0 || pool.Created() != 3 {
		t.Fatalf("Expected pool to grow to 3, got available=%d created=%d", pool.Available(), pool.Created())
	}

	ps.Update(0.016)
	if pool.Available() != 3 {
		t.Errorf("Expected 3 released projectiles, got %d", pool.Available())
	}

	p := pool.Acquire()
	if p.Damage != 0 || p.TargetID != 0 || len(p.hits) != 0 {
		t.Error("reused projectile should be reset")
	}
	if pool.Created() != 3 {
		t.Errorf("reuse should not allocate, created=%d", pool.Created())
	}
}

// TestProjectileSnapshot 发射后修改防御塔不影响已发射的投射物
func TestProjectileSnapshot(t *testing.T) {
	r := newCombatRig(t)
	id := r.placeTower(t, types.TowerPhysical, maze.Point{X: 5, Y: 1})
	e := r.spawnEnemy(t, types.EnemyTank, maze.Point{X: 6, Y: 2})
	tower := r.tower(id)

	p := r.pool.Fire(id, tower, EffectiveDamage(tower, r.bf.Effects), 110, 30, 300, e, 130, 50)
	ApplyTowerUpgrade(tower, types.Path2, 1)
	ApplyTowerUpgrade(tower, types.Path2, 2)

	if p.Damage != 20 || p.Bounces != 0 {
		t.Errorf("projectile should keep launch-time stats, damage=%.1f bounces=%d", p.Damage, p.Bounces)
	}
	if !almostEqual(p.DirX*p.DirX+p.DirY*p.DirY, 1) {
		t.Error("direction should be a unit vector")
	}
}
