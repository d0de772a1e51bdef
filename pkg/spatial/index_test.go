package spatial

import (
	"sort"
	"testing"

	"github.com/gonewx/mazetd/pkg/ecs"
)

func bruteForce(ids []ecs.EntityID, xs, ys []float64, x, y, r float64) []ecs.EntityID {
	var out []ecs.EntityID
	for i, id := range ids {
		dx, dy := xs[i]-x, ys[i]-y
		if dx*dx+dy*dy <= r*r {
			out = append(out, id)
		}
	}
	return out
}

func sortIDs(ids []ecs.EntityID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func TestQueryRadius(t *testing.T) {
	ids := []ecs.EntityID{1, 2, 3, 4, 5}
	xs := []float64{10, 50, 95, 400, -30}
	ys := []float64{10, 10, 10, 400, 5}

	idx := NewIndex(40)
	idx.Rebuild(ids, xs, ys)

	tests := []struct {
		name    string
		x, y, r float64
	}{
		{"小半径", 10, 10, 5},
		{"跨单元", 50, 10, 50},
		{"边界包含", 10, 10, 40},
		{"负坐标", 0, 0, 45},
		{"远处无结果", 1000, 1000, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.QueryRadius(tt.x, tt.y, tt.r, nil)
			want := bruteForce(ids, xs, ys, tt.x, tt.y, tt.r)
			sortIDs(got)
			sortIDs(want)
			if len(got) != len(want) {
				t.Fatalf("Expected %v, got %v", want, got)
			}
			for i := range got {
				if got[i] != want[i] {
					t.Errorf("Expected %v, got %v", want, got)
				}
			}
		})
	}
}

func TestRebuildClearsStaleEntries(t *testing.T) {
	idx := NewIndex(40)
	idx.Rebuild([]ecs.EntityID{1, 2}, []float64{10, 200}, []float64{10, 200})
	idx.Rebuild([]ecs.EntityID{2}, []float64{15}, []float64{15})

	got := idx.QueryRadius(10, 10, 20, nil)
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("Expected only entity 2 after rebuild, got %v", got)
	}
	if idx.Len() != 1 {
		t.Errorf("Expected Len 1, got %d", idx.Len())
	}
	if far := idx.QueryRadius(200, 200, 5, nil); len(far) != 0 {
		t.Errorf("Stale entry still present: %v", far)
	}
}

func TestQueryDeterministicOrder(t *testing.T) {
	ids := []ecs.EntityID{7, 3, 9}
	xs := []float64{5, 6, 7}
	ys := []float64{5, 6, 7}
	idx := NewIndex(40)
	idx.Rebuild(ids, xs, ys)

	got := idx.QueryRadius(6, 6, 10, nil)
	for i, id := range []ecs.EntityID{7, 3, 9} {
		if got[i] != id {
			t.Fatalf("Expected insertion order [7 3 9], got %v", got)
		}
	}

	idx.Insert(11, 8, 8)
	got = idx.QueryRadius(6, 6, 10, got)
	if len(got) != 4 || got[3] != 11 {
		t.Errorf("Expected inserted entity last, got %v", got)
	}
}
