package systems

import (
	"sort"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/types"
)

// TargetScore 按目标模式为敌人打分，分数越高越优先
//
//   - first: 路径进度比例
//   - last: 路径进度比例取负
//   - strongest: 最大生命值
//   - weakest: 当前生命值取负
//   - closest_goal: 到终点的网格距离取负
func (bf *Battlefield) TargetScore(id ecs.EntityID, mode types.TargetingMode) float64 {
	switch mode {
	case types.TargetLast:
		if mv, ok := ecs.GetComponent[*components.MovementComponent](bf.EM, id); ok {
			return -mv.Progress()
		}
	case types.TargetStrongest:
		if h, ok := ecs.GetComponent[*components.HealthComponent](bf.EM, id); ok {
			return h.Max
		}
	case types.TargetWeakest:
		if h, ok := ecs.GetComponent[*components.HealthComponent](bf.EM, id); ok {
			return -h.Current
		}
	case types.TargetClosestGoal:
		if tile, ok := bf.EnemyTile(id); ok {
			return -float64(tile.Manhattan(bf.Goal))
		}
	default:
		if mv, ok := ecs.GetComponent[*components.MovementComponent](bf.EM, id); ok {
			return mv.Progress()
		}
	}
	return 0
}

// SelectTarget 选出得分最高的候选，同分时取先出现者
func (bf *Battlefield) SelectTarget(candidates []ecs.EntityID, mode types.TargetingMode) (ecs.EntityID, bool) {
	var best ecs.EntityID
	bestScore := 0.0
	found := false
	for _, id := range candidates {
		score := bf.TargetScore(id, mode)
		if !found || score > bestScore {
			best, bestScore, found = id, score, true
		}
	}
	return best, found
}

// RankTargets 按得分从高到低稳定排序候选（原地）
func (bf *Battlefield) RankTargets(candidates []ecs.EntityID, mode types.TargetingMode) []ecs.EntityID {
	scores := make(map[ecs.EntityID]float64, len(candidates))
	for _, id := range candidates {
		scores[id] = bf.TargetScore(id, mode)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i]] > scores[candidates[j]]
	})
	return candidates
}

// EffectiveRange 返回应用局内修正后的射程
func EffectiveRange(t *components.TowerComponent, effects config.RunEffects) float64 {
	return t.Range * effects.TowerRangeMult
}

// EffectiveInterval 返回应用局内修正后的攻击间隔
func EffectiveInterval(t *components.TowerComponent, effects config.RunEffects) float64 {
	interval := t.AttackInterval * effects.TowerAttackIntervalMult
	if t.Type == types.TowerMagic {
		interval *= effects.MagicIntervalMult
	}
	return interval
}

// EffectiveDamage 返回应用局内修正后的单发伤害
// 锁定最强目标时额外获得集火加成
func EffectiveDamage(t *components.TowerComponent, effects config.RunEffects) float64 {
	damage := t.Damage * effects.TowerDamageMult
	if t.Type == types.TowerPhysical {
		damage *= effects.ArcherDamageMult
	}
	if t.Targeting == types.TargetStrongest {
		damage *= effects.FocusedTargetingBonus
	}
	return damage
}
