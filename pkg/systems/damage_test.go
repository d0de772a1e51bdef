package systems

import (
	"math/rand"
	"testing"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
)

// TestTakeDamageResists 测试抗性结算
func TestTakeDamageResists(t *testing.T) {
	tests := []struct {
		name      string
		enemy     types.EnemyType
		hit       Hit
		wantHP    float64
		wantApply bool
	}{
		{"坦克物理伤害 230 → 160", types.EnemyTank, Hit{Amount: 100, Type: types.DamagePhysical, Source: types.SourceTrap}, 160, true},
		{"坦克魔法伤害", types.EnemyTank, Hit{Amount: 100, Type: types.DamageMagic, Source: types.SourceTrap}, 142, true},
		{"穿甲覆盖抗性", types.EnemyTank, Hit{Amount: 100, Type: types.DamagePhysical, Source: types.SourceTrap, ResistOverride: 0.12, HasOverride: true}, 142, true},
		{"零伤害不生效", types.EnemyFighter, Hit{Amount: 0, Type: types.DamagePhysical}, 80, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			id := w.spawnEnemy(t, tt.enemy, maze.Point{X: 0, Y: 2})
			if got := w.bf.Damage.TakeDamage(id, tt.hit); got != tt.wantApply {
				t.Errorf("applied: expected %v, got %v", tt.wantApply, got)
			}
			if hp := w.health(id).Current; !almostEqual(hp, tt.wantHP) {
				t.Errorf("hp: expected %.2f, got %.2f", tt.wantHP, hp)
			}
		})
	}
}

// TestMageBlocksProjectiles 法师格挡前三次投射物伤害
func TestMageBlocksProjectiles(t *testing.T) {
	w := newTestWorld(t)
	id := w.spawnEnemy(t, types.EnemyMage, maze.Point{X: 0, Y: 2})
	hit := Hit{Amount: 10, Type: types.DamagePhysical, Source: types.SourceProjectile}

	for i := 0; i < 3; i++ {
		if w.bf.Damage.TakeDamage(id, hit) {
			t.Fatalf("hit %d should be blocked", i+1)
		}
	}
	if w.health(id).Current != 60 {
		t.Fatalf("blocked hits should not deal damage, hp=%.2f", w.health(id).Current)
	}
	if !w.bf.Damage.TakeDamage(id, hit) {
		t.Fatal("fourth hit should land")
	}
	if w.health(id).Current != 50 {
		t.Errorf("Expected hp 50, got %.2f", w.health(id).Current)
	}

	// 陷阱伤害不消耗格挡次数
	mage2 := w.spawnEnemy(t, types.EnemyMage, maze.Point{X: 1, Y: 2})
	w.bf.Damage.TakeDamage(mage2, Hit{Amount: 10, Type: types.DamagePhysical, Source: types.SourceTrap})
	mage, _ := ecs.GetComponent[*components.MageAbilityComponent](w.em, mage2)
	if mage.BlockCharges != 3 {
		t.Errorf("trap damage should not consume block charges, got %d", mage.BlockCharges)
	}
}

// TestAssassinDodge 刺客闪避离散伤害，但不能闪避持续伤害
func TestAssassinDodge(t *testing.T) {
	w := newTestWorld(t)
	id := w.spawnEnemy(t, types.EnemyAssassin, maze.Point{X: 0, Y: 2})
	assassin, _ := ecs.GetComponent[*components.AssassinAbilityComponent](w.em, id)
	assassin.DodgeBase = 2.0 // 必定闪避

	if w.bf.Damage.TakeDamage(id, Hit{Amount: 10, Type: types.DamagePhysical, Source: types.SourceProjectile}) {
		t.Fatal("projectile hit should be dodged")
	}
	if assassin.DodgeStreak != 1 {
		t.Errorf("Expected dodge streak 1, got %d", assassin.DodgeStreak)
	}

	if !w.bf.Damage.TakeDamage(id, Hit{Amount: 10, Type: types.DamageMagic, Source: types.SourceStatus, Continuous: true}) {
		t.Error("status damage should never be dodged")
	}
	if !w.bf.Damage.TakeDamage(id, Hit{Amount: 5, Type: types.DamageMagic, Source: types.SourceTrap, Continuous: true}) {
		t.Error("continuous aura damage should never be dodged")
	}
	if hp := w.health(id).Current; hp != 25 {
		t.Errorf("Expected hp 25, got %.2f", hp)
	}
}

// TestAssassinDodgeDecay 闪避率随连续闪避降低，但不低于下限
func TestAssassinDodgeDecay(t *testing.T) {
	a := &components.AssassinAbilityComponent{DodgeBase: 0.10}
	tests := []struct {
		streak int
		want   float64
	}{
		{0, 0.10},
		{3, 0.07},
		{9, 0.01},
		{20, 0.01},
	}
	for _, tt := range tests {
		a.DodgeStreak = tt.streak
		if got := a.DodgeChance(0.01, 0.01); !almostEqual(got, tt.want) {
			t.Errorf("streak %d: expected %.2f, got %.2f", tt.streak, tt.want, got)
		}
	}
}

// TestShieldAndMark 护盾先吸收伤害，易伤放大结算后的伤害
func TestShieldAndMark(t *testing.T) {
	w := newTestWorld(t)
	id := w.spawnEnemy(t, types.EnemyAssassin, maze.Point{X: 0, Y: 2})
	ecs.RemoveComponent[*components.AssassinAbilityComponent](w.em, id)

	w.health(id).Shield = 15
	w.bf.Status.ApplyMark(w.status(id), 4, 0.5)

	w.bf.Damage.TakeDamage(id, Hit{Amount: 20, Type: types.DamagePhysical, Source: types.SourceTrap})
	// 20 × 1.5 = 30，护盾吸收 15
	if w.health(id).Shield != 0 {
		t.Errorf("Expected shield 0, got %.2f", w.health(id).Shield)
	}
	if w.health(id).Current != 25 {
		t.Errorf("Expected hp 25, got %.2f", w.health(id).Current)
	}
}

// TestDeadEnemyIgnoresDamage 已死亡或已到达终点的敌人不再受伤
func TestDeadEnemyIgnoresDamage(t *testing.T) {
	w := newTestWorld(t)
	dead := w.spawnEnemy(t, types.EnemySwarm, maze.Point{X: 0, Y: 2})
	arrived := w.spawnEnemy(t, types.EnemySwarm, maze.Point{X: 1, Y: 2})
	w.health(dead).Current = 0
	enemy, _ := ecs.GetComponent[*components.EnemyComponent](w.em, arrived)
	enemy.Arrived = true

	hit := Hit{Amount: 10, Type: types.DamagePhysical, Source: types.SourceTrap}
	if w.bf.Damage.TakeDamage(dead, hit) || w.bf.Damage.TakeDamage(arrived, hit) {
		t.Error("finished enemies should ignore damage")
	}
	if alive := LiveEnemies(w.em); len(alive) != 0 {
		t.Errorf("Expected no live enemies, got %v", alive)
	}
}

// TestDamageResolverDeterministic 相同种子的闪避结果一致
func TestDamageResolverDeterministic(t *testing.T) {
	run := func() int {
		w := newTestWorld(t)
		w.bf.Damage = NewDamageResolver(w.em, rand.New(rand.NewSource(5)), config.DefaultAbilities())
		id := w.spawnEnemy(t, types.EnemyAssassin, maze.Point{X: 0, Y: 2})
		assassin, _ := ecs.GetComponent[*components.AssassinAbilityComponent](w.em, id)
		assassin.DodgeBase = 0.5
		w.health(id).Current = 1e6
		w.health(id).Max = 1e6
		for i := 0; i < 100; i++ {
			w.bf.Damage.TakeDamage(id, Hit{Amount: 1, Type: types.DamagePhysical, Source: types.SourceProjectile})
		}
		return assassin.DodgeStreak
	}
	if a, b := run(), run(); a != b {
		t.Errorf("Expected identical dodge streaks, got %d and %d", a, b)
	}
}
