package components

import (
	"testing"

	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
)

func TestLaneStateComponent(t *testing.T) {
	laneState := LaneStateComponent{
		LaneIndex: 2,
		Entry:     maze.Point{X: 1, Y: 12},
		Weight:    1.0,
	}

	if laneState.LaneIndex != 2 {
		t.Errorf("Expected LaneIndex=2, got %d", laneState.LaneIndex)
	}
	if laneState.Entry != (maze.Point{X: 1, Y: 12}) {
		t.Errorf("Expected Entry=(1,12), got %v", laneState.Entry)
	}

	// 模拟选中后更新
	laneState.LastPicked = 3
	laneState.SecondLastPicked = laneState.LastPicked
	laneState.LastPicked = 0
	if laneState.SecondLastPicked != 3 || laneState.LastPicked != 0 {
		t.Errorf("Unexpected counters after pick: last=%d secondLast=%d", laneState.LastPicked, laneState.SecondLastPicked)
	}
}

func TestUpgradeComponentMutualExclusion(t *testing.T) {
	tests := []struct {
		name       string
		upgrade    UpgradeComponent
		path       types.UpgradePath
		canUpgrade bool
	}{
		{"全新建筑两条路线都可升级-1", UpgradeComponent{}, types.Path1, true},
		{"全新建筑两条路线都可升级-2", UpgradeComponent{}, types.Path2, true},
		{"路线1一级后锁定路线2", UpgradeComponent{Path1Level: 1}, types.Path2, false},
		{"路线1一级后可继续路线1", UpgradeComponent{Path1Level: 1}, types.Path1, true},
		{"路线1满级", UpgradeComponent{Path1Level: 2}, types.Path1, false},
		{"路线2一级后锁定路线1", UpgradeComponent{Path2Level: 1}, types.Path1, false},
		{"已出售不可升级", UpgradeComponent{Sold: true}, types.Path1, false},
		{"非法路线", UpgradeComponent{}, types.UpgradePath(3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.upgrade.CanUpgrade(tt.path); got != tt.canUpgrade {
				t.Errorf("CanUpgrade(%d) = %v, want %v", tt.path, got, tt.canUpgrade)
			}
		})
	}
}

func TestStatusComponent(t *testing.T) {
	s := NewStatusComponent(0.2)
	if s.DamageTakenMult != 1.0 {
		t.Errorf("Expected DamageTakenMult 1.0, got %f", s.DamageTakenMult)
	}
	s.Effects[types.EffectFrozen] = &StatusEffect{Kind: types.EffectFrozen, Duration: 1.0}
	if !s.Immobilized() {
		t.Error("Frozen enemy should be immobilized")
	}
	s.ImpairImmune = true
	if s.Immobilized() {
		t.Error("Impair-immune enemy should never be immobilized")
	}
	s.Effects[types.EffectMark] = &StatusEffect{Kind: types.EffectMark, Duration: 0, Strength: 0.5}
	if s.Active(types.EffectMark) || s.Strength(types.EffectMark) != 0 {
		t.Error("Expired effect must not be active")
	}
}

func TestHealthAndMovementHelpers(t *testing.T) {
	h := HealthComponent{Current: 50, Max: 200}
	if h.Fraction() != 0.25 {
		t.Errorf("Expected fraction 0.25, got %f", h.Fraction())
	}

	m := MovementComponent{Path: make([]maze.Point, 10), Cursor: 4}
	if m.Progress() != 0.4 {
		t.Errorf("Expected progress 0.4, got %f", m.Progress())
	}
	if m.Remaining() != 6 {
		t.Errorf("Expected 6 remaining, got %d", m.Remaining())
	}

	a := AssassinAbilityComponent{DodgeBase: 0.10, DodgeStreak: 20}
	if a.DodgeChance(0.01, 0.01) != 0.01 {
		t.Errorf("Dodge chance should floor at 0.01, got %f", a.DodgeChance(0.01, 0.01))
	}
}
