package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/maze"
)

// TestCalculateWeightP 测试权重占比计算
func TestCalculateWeightP(t *testing.T) {
	tests := []struct {
		name     string
		weights  []float64
		expected []float64
	}{
		{
			name:     "正常权重分配",
			weights:  []float64{1.0, 1.0, 1.0, 1.0, 1.0},
			expected: []float64{0.2, 0.2, 0.2, 0.2, 0.2},
		},
		{
			name:     "全零权重",
			weights:  []float64{0.0, 0.0, 0.0},
			expected: []float64{0.0, 0.0, 0.0},
		},
		{
			name:     "单个非零权重",
			weights:  []float64{0.0, 1.0, 0.0},
			expected: []float64{0.0, 1.0, 0.0},
		},
		{
			name:     "不均匀权重",
			weights:  []float64{1.0, 2.0, 3.0},
			expected: []float64{1.0 / 6.0, 2.0 / 6.0, 3.0 / 6.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateWeightP(tt.weights)
			if len(result) != len(tt.expected) {
				t.Fatalf("Expected length %d, got %d", len(tt.expected), len(result))
			}
			for i := range result {
				if math.Abs(result[i]-tt.expected[i]) > 1e-9 {
					t.Errorf("Index %d: expected %.6f, got %.6f", i, tt.expected[i], result[i])
				}
			}
		})
	}
}

// TestCalculatePLast 测试影响因子 PLast 计算
func TestCalculatePLast(t *testing.T) {
	tests := []struct {
		name       string
		lastPicked int
		weightP    float64
		expected   float64
	}{
		{
			name:       "LastPicked=0, WeightP=0.2",
			lastPicked: 0,
			weightP:    0.2,
			expected:   (6.0*0.0*0.2 + 6.0*0.2 - 3.0) / 4.0,
		},
		{
			name:       "LastPicked=5, WeightP=0.2",
			lastPicked: 5,
			weightP:    0.2,
			expected:   (6.0*5.0*0.2 + 6.0*0.2 - 3.0) / 4.0,
		},
		{
			name:       "LastPicked=10, WeightP=0.5",
			lastPicked: 10,
			weightP:    0.5,
			expected:   (6.0*10.0*0.5 + 6.0*0.5 - 3.0) / 4.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePLast(tt.lastPicked, tt.weightP)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Expected %.6f, got %.6f", tt.expected, result)
			}
		})
	}
}

// TestCalculatePSecondLast 测试影响因子 PSecondLast 计算
func TestCalculatePSecondLast(t *testing.T) {
	tests := []struct {
		name             string
		secondLastPicked int
		weightP          float64
		expected         float64
	}{
		{
			name:             "SecondLastPicked=0, WeightP=0.2",
			secondLastPicked: 0,
			weightP:          0.2,
			expected:         (0.0*0.2 + 0.2 - 1.0) / 4.0,
		},
		{
			name:             "SecondLastPicked=3, WeightP=0.2",
			secondLastPicked: 3,
			weightP:          0.2,
			expected:         (3.0*0.2 + 0.2 - 1.0) / 4.0,
		},
		{
			name:             "SecondLastPicked=8, WeightP=0.5",
			secondLastPicked: 8,
			weightP:          0.5,
			expected:         (8.0*0.5 + 0.5 - 1.0) / 4.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePSecondLast(tt.secondLastPicked, tt.weightP)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Expected %.6f, got %.6f", tt.expected, result)
			}
		})
	}
}

// TestCalculateSmoothWeight 测试平滑权重计算
func TestCalculateSmoothWeight(t *testing.T) {
	tests := []struct {
		name        string
		weightP     float64
		pLast       float64
		pSecondLast float64
		expected    float64
	}{
		{
			name:        "WeightP < 1e-6 时返回 0",
			weightP:     1e-7,
			pLast:       1.0,
			pSecondLast: 1.0,
			expected:    0.0,
		},
		{
			name:        "clamp 下限 0.01",
			weightP:     0.5,
			pLast:       -1.0,
			pSecondLast: -1.0,
			expected:    0.5 * 0.01,
		},
		{
			name:        "clamp 上限 100",
			weightP:     0.5,
			pLast:       60.0,
			pSecondLast: 50.0,
			expected:    0.5 * 100.0,
		},
		{
			name:        "正常范围值",
			weightP:     0.2,
			pLast:       1.5,
			pSecondLast: 0.5,
			expected:    0.2 * 2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateSmoothWeight(tt.weightP, tt.pLast, tt.pSecondLast)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Expected %.6f, got %.6f", tt.expected, result)
			}
		})
	}
}

func testLaneEntries(n int) []maze.Point {
	entries := make([]maze.Point, n)
	for i := range entries {
		entries[i] = maze.Point{X: 0, Y: i * 10}
	}
	return entries
}

// TestLaneAllocatorInitializeLanes 测试路线初始化
func TestLaneAllocatorInitializeLanes(t *testing.T) {
	em := ecs.NewEntityManager()
	allocator := NewLaneAllocator(em, rand.New(rand.NewSource(1)))

	entries := testLaneEntries(4)
	allocator.InitializeLanes(entries, 1.0)

	if allocator.LaneCount() != 4 {
		t.Fatalf("Expected 4 lanes, got %d", allocator.LaneCount())
	}

	for i, entity := range allocator.laneEntities {
		laneState, ok := ecs.GetComponent[*components.LaneStateComponent](em, entity)
		if !ok {
			t.Fatalf("Lane %d: component not found", i)
		}
		if laneState.LaneIndex != i {
			t.Errorf("Lane %d: expected LaneIndex=%d, got %d", i, i, laneState.LaneIndex)
		}
		if laneState.Entry != entries[i] {
			t.Errorf("Lane %d: expected entry %v, got %v", i, entries[i], laneState.Entry)
		}
		if laneState.Weight != 1.0 {
			t.Errorf("Lane %d: expected Weight=1.0, got %.2f", i, laneState.Weight)
		}
		if laneState.LastPicked != 0 || laneState.SecondLastPicked != 0 {
			t.Errorf("Lane %d: expected zero counters, got %d/%d", i, laneState.LastPicked, laneState.SecondLastPicked)
		}
	}

	if _, ok := allocator.Entry(4); ok {
		t.Error("Entry(4) should not exist")
	}
	if _, ok := allocator.Entry(-1); ok {
		t.Error("Entry(-1) should not exist")
	}
}

// TestLaneAllocatorAddLane 测试路线扩展后追加路线
func TestLaneAllocatorAddLane(t *testing.T) {
	em := ecs.NewEntityManager()
	allocator := NewLaneAllocator(em, rand.New(rand.NewSource(1)))
	allocator.InitializeLanes(testLaneEntries(3), 1.0)
	allocator.UpdateLaneCounters(0)

	entry := maze.Point{X: 39, Y: 5}
	index := allocator.AddLane(entry)
	if index != 3 {
		t.Fatalf("Expected new lane index 3, got %d", index)
	}
	if got, ok := allocator.Entry(index); !ok || got != entry {
		t.Errorf("Expected entry %v, got %v (ok=%v)", entry, got, ok)
	}

	state, _ := ecs.GetComponent[*components.LaneStateComponent](em, allocator.laneEntities[index])
	if state.Weight != 1.0 {
		t.Errorf("New lane should inherit initial weight 1.0, got %.2f", state.Weight)
	}
	if state.LastPicked != 0 {
		t.Errorf("New lane counters should start at 0, got %d", state.LastPicked)
	}
}

// TestLaneAllocatorUpdateLaneCounters 测试计数器更新
func TestLaneAllocatorUpdateLaneCounters(t *testing.T) {
	em := ecs.NewEntityManager()
	allocator := NewLaneAllocator(em, rand.New(rand.NewSource(1)))
	allocator.InitializeLanes(testLaneEntries(5), 1.0)

	// 选中路线 2
	allocator.UpdateLaneCounters(2)

	lane2State, _ := ecs.GetComponent[*components.LaneStateComponent](em, allocator.laneEntities[2])
	if lane2State.LastPicked != 0 {
		t.Errorf("Lane 2: expected LastPicked=0, got %d", lane2State.LastPicked)
	}
	if lane2State.SecondLastPicked != 0 {
		t.Errorf("Lane 2: expected SecondLastPicked=0, got %d", lane2State.SecondLastPicked)
	}

	for i := 0; i < 5; i++ {
		if i == 2 {
			continue
		}
		laneState, _ := ecs.GetComponent[*components.LaneStateComponent](em, allocator.laneEntities[i])
		if laneState.LastPicked != 1 {
			t.Errorf("Lane %d: expected LastPicked=1, got %d", i, laneState.LastPicked)
		}
		if laneState.SecondLastPicked != 1 {
			t.Errorf("Lane %d: expected SecondLastPicked=1, got %d", i, laneState.SecondLastPicked)
		}
	}

	// 再选中路线 1
	allocator.UpdateLaneCounters(1)

	lane1State, _ := ecs.GetComponent[*components.LaneStateComponent](em, allocator.laneEntities[1])
	if lane1State.LastPicked != 0 {
		t.Errorf("Lane 1: expected LastPicked=0, got %d", lane1State.LastPicked)
	}
	if lane1State.SecondLastPicked != 1 {
		t.Errorf("Lane 1: expected SecondLastPicked=1 (from previous LastPicked), got %d", lane1State.SecondLastPicked)
	}
}

// TestLaneAllocatorSelectLane 测试路线选择边界情况
func TestLaneAllocatorSelectLane(t *testing.T) {
	t.Run("单条路线", func(t *testing.T) {
		em := ecs.NewEntityManager()
		allocator := NewLaneAllocator(em, rand.New(rand.NewSource(1)))
		allocator.InitializeLanes(testLaneEntries(1), 1.0)
		if lane := allocator.SelectLane(nil); lane != 0 {
			t.Errorf("Single lane: expected 0, got %d", lane)
		}
	})

	t.Run("没有路线", func(t *testing.T) {
		em := ecs.NewEntityManager()
		allocator := NewLaneAllocator(em, rand.New(rand.NewSource(1)))
		if lane := allocator.SelectLane(nil); lane != 0 {
			t.Errorf("No lanes: expected 0, got %d", lane)
		}
	})

	t.Run("全零权重返回第一条合法路线", func(t *testing.T) {
		em := ecs.NewEntityManager()
		allocator := NewLaneAllocator(em, rand.New(rand.NewSource(1)))
		allocator.InitializeLanes(testLaneEntries(3), 0.0)
		lane := allocator.SelectLane(func(l int) bool { return l != 0 })
		if lane != 1 {
			t.Errorf("All zero weights: expected 1, got %d", lane)
		}
	})

	t.Run("只选择合法路线", func(t *testing.T) {
		em := ecs.NewEntityManager()
		allocator := NewLaneAllocator(em, rand.New(rand.NewSource(7)))
		allocator.InitializeLanes(testLaneEntries(4), 1.0)
		for i := 0; i < 200; i++ {
			lane := allocator.SelectLane(func(l int) bool { return l == 1 || l == 3 })
			if lane != 1 && lane != 3 {
				t.Fatalf("Selected illegal lane %d", lane)
			}
			allocator.UpdateLaneCounters(lane)
		}
	})
}

// TestLaneSelectionDistribution 测试路线选择分布均匀性
func TestLaneSelectionDistribution(t *testing.T) {
	em := ecs.NewEntityManager()
	allocator := NewLaneAllocator(em, rand.New(rand.NewSource(42)))
	allocator.InitializeLanes(testLaneEntries(4), 1.0)

	iterations := 1000
	counts := make(map[int]int)
	for i := 0; i < iterations; i++ {
		selectedLane := allocator.SelectLane(nil)
		counts[selectedLane]++
		allocator.UpdateLaneCounters(selectedLane)
	}

	// 平滑权重让每条路线的选中次数接近均值（预期每条约 250 次）
	expectedCount := iterations / 4
	tolerance := 100
	for lane := 0; lane < 4; lane++ {
		count := counts[lane]
		if count < expectedCount-tolerance || count > expectedCount+tolerance {
			t.Errorf("Lane %d: count=%d (expected ~%d, tolerance ±%d)", lane, count, expectedCount, tolerance)
		}
	}

	totalCount := 0
	for _, count := range counts {
		totalCount += count
	}
	if totalCount != iterations {
		t.Errorf("Total count=%d, expected %d", totalCount, iterations)
	}
}

// TestLaneSelectionDeterministic 相同种子得到相同的路线序列
func TestLaneSelectionDeterministic(t *testing.T) {
	run := func() []int {
		em := ecs.NewEntityManager()
		allocator := NewLaneAllocator(em, rand.New(rand.NewSource(99)))
		allocator.InitializeLanes(testLaneEntries(3), 1.0)
		out := make([]int, 0, 50)
		for i := 0; i < 50; i++ {
			lane := allocator.SelectLane(nil)
			allocator.UpdateLaneCounters(lane)
			out = append(out, lane)
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Sequences diverge at %d: %d vs %d", i, a[i], b[i])
		}
	}
}

// TestFilterLegalLanes 测试合法路线过滤
func TestFilterLegalLanes(t *testing.T) {
	laneStates := []*components.LaneStateComponent{
		{LaneIndex: 0, Weight: 1.0},
		{LaneIndex: 1, Weight: 1.0},
		{LaneIndex: 2, Weight: 1.0},
	}

	tests := []struct {
		name     string
		legal    func(int) bool
		expected []int
	}{
		{"判定为空时所有路线合法", nil, []int{0, 1, 2}},
		{"排除一条路线", func(l int) bool { return l != 1 }, []int{0, 2}},
		{"没有合法路线", func(int) bool { return false }, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilterLegalLanes(laneStates, tt.legal)
			if len(result) != len(tt.expected) {
				t.Fatalf("Expected length %d, got %d", len(tt.expected), len(result))
			}
			for i := range result {
				if result[i].LaneIndex != tt.expected[i] {
					t.Errorf("Index %d: expected lane %d, got %d", i, tt.expected[i], result[i].LaneIndex)
				}
			}
		})
	}
}
