package systems

import (
	"math/rand"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/maze"
)

// LaneAllocator 路线分配器
//
// 实现平滑权重路线分配算法，确保敌人在多条路线之间的分布自然且避免连续重复
type LaneAllocator struct {
	entityManager *ecs.EntityManager
	laneEntities  []ecs.EntityID // 按路线编号存储路线实体
	rng           *rand.Rand
	initialWeight float64
}

// NewLaneAllocator 创建新的路线分配器
func NewLaneAllocator(em *ecs.EntityManager, rng *rand.Rand) *LaneAllocator {
	return &LaneAllocator{
		entityManager: em,
		laneEntities:  make([]ecs.EntityID, 0),
		rng:           rng,
	}
}

// InitializeLanes 为每个路线入口创建状态组件
//
// 参数:
//   - entries: 路线入口（下标即路线编号）
//   - initialWeight: 初始权重
func (la *LaneAllocator) InitializeLanes(entries []maze.Point, initialWeight float64) {
	la.laneEntities = make([]ecs.EntityID, 0, len(entries))
	la.initialWeight = initialWeight
	for _, entry := range entries {
		la.AddLane(entry)
	}
	logger.Log.Debugf("[LaneAllocator] Initialized %d lanes with initial weight %.2f", len(entries), initialWeight)
}

// AddLane 追加一条新路线（路线扩展后调用），返回其编号
// 新路线的计数器从 0 开始，与已有路线使用相同的初始权重
func (la *LaneAllocator) AddLane(entry maze.Point) int {
	index := len(la.laneEntities)
	entity := la.entityManager.CreateEntity()
	ecs.AddComponent(la.entityManager, entity, &components.LaneStateComponent{
		LaneIndex: index,
		Entry:     entry,
		Weight:    la.initialWeight,
	})
	la.laneEntities = append(la.laneEntities, entity)
	return index
}

// LaneCount 返回路线数量
func (la *LaneAllocator) LaneCount() int {
	return len(la.laneEntities)
}

// Entry 返回路线入口
func (la *LaneAllocator) Entry(lane int) (maze.Point, bool) {
	if lane < 0 || lane >= len(la.laneEntities) {
		return maze.Point{}, false
	}
	state, ok := ecs.GetComponent[*components.LaneStateComponent](la.entityManager, la.laneEntities[lane])
	if !ok {
		return maze.Point{}, false
	}
	return state.Entry, true
}

func (la *LaneAllocator) states() []*components.LaneStateComponent {
	laneStates := make([]*components.LaneStateComponent, 0, len(la.laneEntities))
	for _, entity := range la.laneEntities {
		if laneState, ok := ecs.GetComponent[*components.LaneStateComponent](la.entityManager, entity); ok {
			laneStates = append(laneStates, laneState)
		}
	}
	return laneStates
}

// SelectLane 为敌人选择一条路线
//
// 参数:
//   - legal: 合法路线判定（为 nil 时所有路线都合法），例如过滤掉当前无法到达终点的路线
//
// 返回:
//   - 选中的路线编号，没有可用路线时返回 0
func (la *LaneAllocator) SelectLane(legal func(lane int) bool) int {
	laneStates := la.states()
	if len(laneStates) == 0 {
		logger.Log.Warn("[LaneAllocator] No lane states found, using lane 0")
		return 0
	}

	legalLaneStates := FilterLegalLanes(laneStates, legal)
	if len(legalLaneStates) == 0 {
		logger.Log.Warn("[LaneAllocator] No legal lanes, using lane 0")
		return 0
	}

	laneWeights := make([]float64, len(legalLaneStates))
	for i, state := range legalLaneStates {
		laneWeights[i] = state.Weight
	}
	weightP := CalculateWeightP(laneWeights)

	smoothWeights := make([]float64, len(legalLaneStates))
	totalWeight := 0.0
	for i, state := range legalLaneStates {
		pLast := CalculatePLast(state.LastPicked, weightP[i])
		pSecondLast := CalculatePSecondLast(state.SecondLastPicked, weightP[i])
		smoothWeights[i] = CalculateSmoothWeight(weightP[i], pLast, pSecondLast)
		totalWeight += smoothWeights[i]
	}

	if totalWeight <= 0 {
		logger.Log.Warn("[LaneAllocator] All smooth weights are zero, using first legal lane")
		return legalLaneStates[0].LaneIndex
	}

	randNum := la.rng.Float64() * totalWeight
	cumulativeWeight := 0.0
	for i, sw := range smoothWeights {
		cumulativeWeight += sw
		if cumulativeWeight >= randNum {
			return legalLaneStates[i].LaneIndex
		}
	}
	return legalLaneStates[len(legalLaneStates)-1].LaneIndex
}

// UpdateLaneCounters 更新选中路线的计数器
//
// 算法说明：
//  1. 所有权重 > 0 的路线 LastPicked 与 SecondLastPicked 均 +1
//  2. 选中路线的 SecondLastPicked 取其选中前的 LastPicked
//  3. 选中路线的 LastPicked 置 0
func (la *LaneAllocator) UpdateLaneCounters(selectedLane int) {
	laneStates := la.states()
	for _, laneState := range laneStates {
		if laneState.Weight > 0 {
			laneState.LastPicked++
			laneState.SecondLastPicked++
		}
	}

	for _, laneState := range laneStates {
		if laneState.LaneIndex == selectedLane {
			// LastPicked 已经在第一遍中递增了，所以 LastPicked-1 是选中前的值
			laneState.SecondLastPicked = laneState.LastPicked - 1
			laneState.LastPicked = 0
			break
		}
	}
}

// CalculateWeightP 计算权重占比
//
// 参数:
//   - laneWeights: 所有路线的权重列表
//
// 返回:
//   - 权重占比列表
func CalculateWeightP(laneWeights []float64) []float64 {
	sum := 0.0
	for _, w := range laneWeights {
		sum += w
	}

	weightP := make([]float64, len(laneWeights))
	for i, w := range laneWeights {
		if sum > 0 {
			weightP[i] = w / sum
		}
	}
	return weightP
}

// CalculatePLast 计算影响因子 PLast
//
// 公式: PLast = (6 × LastPicked × WeightP + 6 × WeightP - 3) / 4
func CalculatePLast(lastPicked int, weightP float64) float64 {
	return (6.0*float64(lastPicked)*weightP + 6.0*weightP - 3.0) / 4.0
}

// CalculatePSecondLast 计算影响因子 PSecondLast
//
// 公式: PSecondLast = (SecondLastPicked × WeightP + WeightP - 1) / 4
func CalculatePSecondLast(secondLastPicked int, weightP float64) float64 {
	return (float64(secondLastPicked)*weightP + weightP - 1.0) / 4.0
}

// CalculateSmoothWeight 计算平滑权重
//
// 公式: SmoothWeight = WeightP × clamp(PLast + PSecondLast, 0.01, 100)
func CalculateSmoothWeight(weightP float64, pLast float64, pSecondLast float64) float64 {
	if weightP < 1e-6 {
		return 0
	}

	sum := pLast + pSecondLast
	if sum < 0.01 {
		sum = 0.01
	} else if sum > 100.0 {
		sum = 100.0
	}
	return weightP * sum
}

// FilterLegalLanes 过滤合法路线
func FilterLegalLanes(laneStates []*components.LaneStateComponent, legal func(lane int) bool) []*components.LaneStateComponent {
	if legal == nil {
		return laneStates
	}
	out := make([]*components.LaneStateComponent, 0, len(laneStates))
	for _, state := range laneStates {
		if legal(state.LaneIndex) {
			out = append(out, state)
		}
	}
	return out
}

// LogLaneSelectionProbability 输出路线选择概率（调试用）
func (la *LaneAllocator) LogLaneSelectionProbability() {
	laneStates := la.states()
	if len(laneStates) == 0 {
		return
	}

	laneWeights := make([]float64, len(laneStates))
	for i, state := range laneStates {
		laneWeights[i] = state.Weight
	}
	weightP := CalculateWeightP(laneWeights)

	smoothWeights := make([]float64, len(laneStates))
	total := 0.0
	for i, state := range laneStates {
		smoothWeights[i] = CalculateSmoothWeight(weightP[i], CalculatePLast(state.LastPicked, weightP[i]), CalculatePSecondLast(state.SecondLastPicked, weightP[i]))
		total += smoothWeights[i]
	}

	for i, state := range laneStates {
		probability := 0.0
		if total > 0 {
			probability = smoothWeights[i] / total * 100
		}
		logger.Log.Debugf("[LaneAllocator] Lane %d: LastPicked=%d, SmoothWeight=%.4f, Probability=%.2f%%",
			state.LaneIndex, state.LastPicked, smoothWeights[i], probability)
	}
}
