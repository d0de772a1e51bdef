package systems

import (
	"math"

	"github.com/gonewx/mazetd/pkg/config"
)

// DifficultyEngine 难度引擎
// 负责按波次计算敌人数量、强度倍率、冰冻抗性与虫群奖励衰减
type DifficultyEngine struct {
	enemyStats *config.EnemyStatsConfig
	waveRules  *config.WaveRulesConfig
}

// NewDifficultyEngine 创建新的难度引擎实例
func NewDifficultyEngine(enemyStats *config.EnemyStatsConfig, waveRules *config.WaveRulesConfig) *DifficultyEngine {
	return &DifficultyEngine{
		enemyStats: enemyStats,
		waveRules:  waveRules,
	}
}

// CalculateScale 计算敌人强度倍率
// 公式: Scale = (1 + ScaleIncrement) ^ (wave / ScaleWaveInterval)
func (d *DifficultyEngine) CalculateScale(wave int) float64 {
	if d.enemyStats.ScaleWaveInterval <= 0 {
		return 1.0
	}
	return math.Pow(1+d.enemyStats.ScaleIncrement, float64(wave/d.enemyStats.ScaleWaveInterval))
}

// CalculateFreezeResist 计算冰冻抗性
// 前期为 0，中期每波线性增长并封顶，后期从中期上限继续增长；Boss 额外加成
// 参数:
//
//	wave - 当前波次
//	boss - 是否为 Boss
//
// 返回:
//
//	冰冻抗性（0~1）
func (d *DifficultyEngine) CalculateFreezeResist(wave int, boss bool) float64 {
	r := d.waveRules.FreezeResist
	resist := 0.0
	switch {
	case wave <= r.EarlyEnd:
		resist = 0
	case wave <= r.MidEnd:
		resist = math.Min(r.MidCap, float64(wave-r.EarlyEnd)*r.MidRate)
	default:
		resist = math.Min(r.LateCap, r.MidCap+float64(wave-r.MidEnd)*r.LateRate)
	}
	if boss {
		resist = math.Min(r.BossCap, resist+r.BossBonus)
	}
	return resist
}

// CalculateSwarmReward 计算本波第 index 只虫群（从 1 开始）的奖励
// 前 FreeCount 只不衰减，之后按 RewardDecay 逐只衰减，倍率不低于 RewardFloor，奖励至少为 1
func (d *DifficultyEngine) CalculateSwarmReward(baseReward, index int) int {
	s := d.waveRules.Swarm
	if index <= s.FreeCount {
		return baseReward
	}
	mult := math.Max(s.RewardFloor, math.Pow(s.RewardDecay, float64(index-s.FreeCount)))
	reward := int(float64(baseReward) * mult)
	if reward < 1 {
		return 1
	}
	return reward
}

// CalculateWaveEnemyCount 计算一波的敌人总数（波次超过目标波次时按目标波次计算）
// 前期: EarlyBase + w
// 中期: MidBase + int((w - EarlyEnd) * MidGrowth)
// 后期: LateBase + int((w - MidEnd) * LateGrowth)
func (d *DifficultyEngine) CalculateWaveEnemyCount(wave, targetWave int) int {
	p := d.waveRules.Progression
	w := wave
	if targetWave > 0 && w > targetWave {
		w = targetWave
	}
	switch {
	case w <= p.EarlyEnd:
		return p.EarlyBase + w
	case w <= p.MidEnd:
		return p.MidBase + int(float64(w-p.EarlyEnd)*p.MidGrowth)
	default:
		return p.LateBase + int(float64(w-p.MidEnd)*p.LateGrowth)
	}
}

// GetEnemyStats 获取敌人属性配置
func (d *DifficultyEngine) GetEnemyStats() *config.EnemyStatsConfig {
	return d.enemyStats
}
