package systems

import (
	"math/rand"

	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/types"
)

// WaveScheduler 波次生成策略：决定生成什么、何时生成、一波生成多少
type WaveScheduler struct {
	rules      *config.WaveRulesConfig
	difficulty *DifficultyEngine
	rng        *rand.Rand
}

// NewWaveScheduler 创建波次生成策略
func NewWaveScheduler(rules *config.WaveRulesConfig, difficulty *DifficultyEngine, rng *rand.Rand) *WaveScheduler {
	return &WaveScheduler{rules: rules, difficulty: difficulty, rng: rng}
}

// Pool 返回指定波次的敌人池（重复项即权重，Boss 不在池中）
func (ws *WaveScheduler) Pool(wave int) []types.EnemyType {
	phase := ws.rules.PhaseFor(wave)
	pool := make([]types.EnemyType, 0, len(phase.Pool)+len(phase.Bonus))
	for _, name := range phase.Pool {
		pool = append(pool, types.EnemyType(name))
	}
	for _, bonus := range phase.Bonus {
		if wave >= bonus.FromWave {
			pool = append(pool, types.EnemyType(bonus.Type))
		}
	}

	out := pool[:0]
	for _, t := range pool {
		if !t.IsBoss() {
			out = append(out, t)
		}
	}
	return out
}

// SwarmChance 返回指定波次的虫群概率
func (ws *WaveScheduler) SwarmChance(wave int) float64 {
	phase := ws.rules.PhaseFor(wave)
	if wave < phase.SwarmFromWave {
		return 0
	}
	return phase.SwarmChance
}

// ChooseEnemyType 选择下一个生成的敌人类型
//
// 参数:
//   - wave: 当前波次
//   - living: 场上存活敌人数
//   - remaining: 本波剩余生成数量，小于 0 表示不限制
//
// 规则:
//   - 剩余数量不少于 MinRemaining 时才可能出现虫群
//   - 场上没有敌人时不生成治疗者
func (ws *WaveScheduler) ChooseEnemyType(wave, living, remaining int) types.EnemyType {
	canSwarm := remaining < 0 || remaining >= ws.rules.Swarm.MinRemaining
	if canSwarm && ws.rng.Float64() < ws.SwarmChance(wave) {
		return types.EnemySwarm
	}

	pool := ws.Pool(wave)
	if !canSwarm {
		pool = without(pool, types.EnemySwarm)
	}
	if len(pool) == 0 {
		return types.EnemyFighter
	}

	choice := pool[ws.rng.Intn(len(pool))]
	if choice == types.EnemyHealer && living == 0 {
		others := without(pool, types.EnemyHealer)
		if len(others) == 0 {
			return types.EnemyFighter
		}
		return others[ws.rng.Intn(len(others))]
	}
	return choice
}

// GetSpawnInterval 返回指定波次的生成间隔（秒）
func (ws *WaveScheduler) GetSpawnInterval(wave int) float64 {
	return ws.rules.PhaseFor(wave).SpawnInterval
}

// GetWaveEnemyCount 返回指定波次的敌人总数
func (ws *WaveScheduler) GetWaveEnemyCount(wave, targetWave int) int {
	return ws.difficulty.CalculateWaveEnemyCount(wave, targetWave)
}

// IsBossWave 判断是否为 Boss 波
func (ws *WaveScheduler) IsBossWave(wave int) bool {
	return wave > 0 && wave%ws.rules.BossWaveInterval == 0
}

// BossType 返回 Boss 波的 Boss 类型
func (ws *WaveScheduler) BossType(wave int) types.EnemyType {
	if wave%ws.rules.DemonWaveInterval == 0 {
		return types.EnemyDemonBoss
	}
	return types.EnemyMinotaurBoss
}

// IsExpansionWave 判断本波开始前是否扩展路线
func (ws *WaveScheduler) IsExpansionWave(wave int) bool {
	return wave > 0 && wave%ws.rules.ExpansionInterval == 0
}

func without(pool []types.EnemyType, excluded types.EnemyType) []types.EnemyType {
	out := make([]types.EnemyType, 0, len(pool))
	for _, t := range pool {
		if t != excluded {
			out = append(out, t)
		}
	}
	return out
}
