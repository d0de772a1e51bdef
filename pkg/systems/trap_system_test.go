package systems

import (
	"testing"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
)

func (w *testWorld) trap(id ecs.EntityID) *components.TrapComponent {
	trap, _ := ecs.GetComponent[*components.TrapComponent](w.em, id)
	return trap
}

// TestSpikeTrapInterval 尖刺陷阱按间隔触发，只对站在格上的敌人生效
func TestSpikeTrapInterval(t *testing.T) {
	w := newTestWorld(t)
	traps := NewTrapSystem(w.bf)
	w.placeTrap(t, types.TrapSpikes, maze.Point{X: 10, Y: 2})
	on := w.spawnEnemy(t, types.EnemyTank, maze.Point{X: 10, Y: 2})
	beside := w.spawnEnemy(t, types.EnemyTank, maze.Point{X: 11, Y: 2})
	w.bf.RebuildSpatialIndex()

	// 2.5 秒内触发两次：50 × (1 - 0.30) × 2
	for i := 0; i < 25; i++ {
		traps.Update(0.1)
	}
	if got := w.health(on).Current; !almostEqual(got, 160) {
		t.Errorf("Expected 2 pulses (hp 160), got %.2f", got)
	}
	if got := w.health(beside).Current; got != 230 {
		t.Errorf("adjacent enemy should be untouched, got %.2f", got)
	}
}

// TestSpikeTrapWaitsForEnemy 计时器空转累加，敌人踩上时立即触发
func TestSpikeTrapWaitsForEnemy(t *testing.T) {
	w := newTestWorld(t)
	traps := NewTrapSystem(w.bf)
	id := w.placeTrap(t, types.TrapSpikes, maze.Point{X: 10, Y: 2})

	w.bf.RebuildSpatialIndex()
	for i := 0; i < 4; i++ {
		traps.Update(0.5)
	}
	if got := w.trap(id).Timer; !almostEqual(got, 2) {
		t.Fatalf("timer should keep accumulating, got %.2f", got)
	}

	e := w.spawnEnemy(t, types.EnemyTank, maze.Point{X: 10, Y: 2})
	w.bf.RebuildSpatialIndex()
	traps.Update(0.01)
	if got := w.health(e).Current; !almostEqual(got, 195) {
		t.Errorf("Expected immediate trigger (hp 195), got %.2f", got)
	}
	if w.trap(id).Timer != 0 {
		t.Error("timer should reset after triggering")
	}
}

// TestSpikeTrapDamageModifier 尖刺伤害倍率来自局内修正
func TestSpikeTrapDamageModifier(t *testing.T) {
	effects := config.DefaultRunEffects()
	effects.SpikeDamageMult = 2
	w := newTestWorldWithEffects(t, effects)
	traps := NewTrapSystem(w.bf)
	w.placeTrap(t, types.TrapSpikes, maze.Point{X: 10, Y: 2})
	e := w.spawnEnemy(t, types.EnemyTank, maze.Point{X: 10, Y: 2})
	w.bf.RebuildSpatialIndex()

	traps.Update(1.0)
	if got := w.health(e).Current; !almostEqual(got, 160) {
		t.Errorf("Expected 100 × 0.7 damage (hp 160), got %.2f", got)
	}
}

// TestSpikeTrapUpgrades 倒刺、钉刺、集束与地震
func TestSpikeTrapUpgrades(t *testing.T) {
	tests := []struct {
		name     string
		path     types.UpgradePath
		levels   int
		wantOn   float64
		wantNear float64
		wantFar  float64
		bleeding bool
		impaled  bool
	}{
		{"倒刺", types.Path1, 1, 230 - 65*0.7, 230, 230, true, false},
		{"钉刺", types.Path1, 2, 230 - 65*0.7, 230, 230, true, true},
		{"集束", types.Path2, 1, 195, 230 - 15*0.7, 230, false, false},
		{"地震", types.Path2, 2, 195, 230 - 40*0.7, 230 - 25*0.7, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			traps := NewTrapSystem(w.bf)
			id := w.placeTrap(t, types.TrapSpikes, maze.Point{X: 10, Y: 2})
			for lvl := 1; lvl <= tt.levels; lvl++ {
				ApplyTrapUpgrade(w.trap(id), tt.path, lvl)
			}
			on := w.spawnEnemy(t, types.EnemyTank, maze.Point{X: 10, Y: 2})
			near := w.spawnEnemy(t, types.EnemyTank, maze.Point{X: 11, Y: 2})
			far := w.spawnEnemy(t, types.EnemyTank, maze.Point{X: 12, Y: 2})
			w.bf.RebuildSpatialIndex()

			traps.Update(1.0)

			if got := w.health(on).Current; !almostEqual(got, tt.wantOn) {
				t.Errorf("on tile: expected %.2f, got %.2f", tt.wantOn, got)
			}
			if got := w.health(near).Current; !almostEqual(got, tt.wantNear) {
				t.Errorf("adjacent: expected %.2f, got %.2f", tt.wantNear, got)
			}
			if got := w.health(far).Current; !almostEqual(got, tt.wantFar) {
				t.Errorf("two tiles away: expected %.2f, got %.2f", tt.wantFar, got)
			}
			st := w.status(on)
			if st.Bleeding != tt.bleeding {
				t.Errorf("bleeding: expected %v, got %v", tt.bleeding, st.Bleeding)
			}
			if st.Active(types.EffectImpale) != tt.impaled {
				t.Errorf("impaled: expected %v", tt.impaled)
			}
		})
	}
}

// TestFireTrapBands 火焰光环按切比雪夫距离分档
func TestFireTrapBands(t *testing.T) {
	tests := []struct {
		name    string
		upgrade bool
		wantHP  []float64
	}{
		{"基础光环", false, []float64{50, 65, 72.5, 80}},
		{"炼狱光环", true, []float64{35, 57.5, 68.75, 80 - 45*0.15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			traps := NewTrapSystem(w.bf)
			id := w.placeTrap(t, types.TrapFire, maze.Point{X: 10, Y: 2})
			if tt.upgrade {
				ApplyTrapUpgrade(w.trap(id), types.Path1, 1)
			}
			var enemies []ecs.EntityID
			for dx := 0; dx < 4; dx++ {
				enemies = append(enemies, w.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 10 + dx, Y: 2}))
			}
			w.bf.RebuildSpatialIndex()

			traps.Update(1.0)
			for i, e := range enemies {
				if got := w.health(e).Current; !almostEqual(got, tt.wantHP[i]) {
					t.Errorf("distance %d: expected %.2f, got %.2f", i, tt.wantHP[i], got)
				}
			}
		})
	}
}

// TestFireTrapIgnoresMageBlock 光环伤害不消耗法师格挡
func TestFireTrapIgnoresMageBlock(t *testing.T) {
	w := newTestWorld(t)
	traps := NewTrapSystem(w.bf)
	w.placeTrap(t, types.TrapFire, maze.Point{X: 10, Y: 2})
	e := w.spawnEnemy(t, types.EnemyMage, maze.Point{X: 10, Y: 2})
	w.bf.RebuildSpatialIndex()

	traps.Update(1.0)
	// 30 × (1 - 0.10)
	if got := w.health(e).Current; !almostEqual(got, 33) {
		t.Errorf("Expected hp 33, got %.2f", got)
	}
}

// TestFireTrapBurnSpread 油膜点燃光环内敌人
func TestFireTrapBurnSpread(t *testing.T) {
	w := newTestWorld(t)
	traps := NewTrapSystem(w.bf)
	id := w.placeTrap(t, types.TrapFire, maze.Point{X: 10, Y: 2})
	ApplyTrapUpgrade(w.trap(id), types.Path2, 1)
	center := w.spawnEnemy(t, types.EnemyTank, maze.Point{X: 10, Y: 2})
	edge := w.spawnEnemy(t, types.EnemyTank, maze.Point{X: 11, Y: 2})
	third := w.spawnEnemy(t, types.EnemyTank, maze.Point{X: 12, Y: 2})
	w.bf.RebuildSpatialIndex()

	traps.Update(0.1)

	if got := w.status(center).Strength(types.EffectBurn); !almostEqual(got, 1.0) {
		t.Errorf("center burn strength: expected 1.0, got %.2f", got)
	}
	if got := w.status(edge).Strength(types.EffectBurn); got < 0.7 {
		t.Errorf("adjacent burn strength should be at least 0.7, got %.2f", got)
	}
	if !w.status(third).Burning {
		t.Error("burning enemies should ignite neighbours within spread radius")
	}
}

// TestFireTrapOnKill 光环击杀触发凤凰与引爆
func TestFireTrapOnKill(t *testing.T) {
	tests := []struct {
		name     string
		levels   []types.UpgradePath
		wantHP   float64
		wantBurn bool
	}{
		{"凤凰", []types.UpgradePath{types.Path1, types.Path1}, 80 - 45*0.5*0.1, true},
		{"引爆", []types.UpgradePath{types.Path2, types.Path2}, 80 - 30*0.5*0.1 - 40, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			traps := NewTrapSystem(w.bf)
			id := w.placeTrap(t, types.TrapFire, maze.Point{X: 10, Y: 2})
			for i, path := range tt.levels {
				ApplyTrapUpgrade(w.trap(id), path, i+1)
			}
			victim := w.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 10, Y: 2})
			w.health(victim).Current = 1
			neighbour := w.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 11, Y: 2})
			w.bf.RebuildSpatialIndex()

			traps.Update(0.1)

			if w.health(victim).Current > 0 {
				t.Fatal("victim should die in the aura")
			}
			if got := w.health(neighbour).Current; !almostEqual(got, tt.wantHP) {
				t.Errorf("neighbour hp: expected %.2f, got %.2f", tt.wantHP, got)
			}
			if w.status(neighbour).Burning != tt.wantBurn {
				t.Errorf("neighbour burning: expected %v", tt.wantBurn)
			}
		})
	}
}

// TestSoldTrapInactive 已出售的陷阱不再生效
func TestSoldTrapInactive(t *testing.T) {
	w := newTestWorld(t)
	traps := NewTrapSystem(w.bf)
	id := w.placeTrap(t, types.TrapFire, maze.Point{X: 10, Y: 2})
	up, _ := ecs.GetComponent[*components.UpgradeComponent](w.em, id)
	up.Sold = true
	e := w.spawnEnemy(t, types.EnemyFighter, maze.Point{X: 10, Y: 2})
	w.bf.RebuildSpatialIndex()

	traps.Update(1.0)
	if w.health(e).Current != 80 {
		t.Errorf("sold trap dealt damage, hp=%.2f", w.health(e).Current)
	}
}
