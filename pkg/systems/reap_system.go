package systems

import (
	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ReapResult 一帧回收结果
type ReapResult struct {
	Gold      int // 击杀奖励
	LivesLost int // 到达终点的敌人数
	Kills     int
	BossKills int
	Stuck     int // 无路可走被移除的敌人数
}

// ReapSystem 回收系统
// 每帧末尾移除死亡、到达终点或卡死的敌人并结算奖励与生命损失
//
// 结算规则：
//   - 到达终点：扣除一点生命，无奖励
//   - 被击杀：奖励 × 敌人奖励倍率 × 击杀奖励倍率
//   - 卡死：直接移除，无奖励也不扣生命
type ReapSystem struct {
	entityManager *ecs.EntityManager
	effects       config.RunEffects
}

// NewReapSystem 创建回收系统
func NewReapSystem(em *ecs.EntityManager, effects config.RunEffects) *ReapSystem {
	return &ReapSystem{entityManager: em, effects: effects}
}

// Update 结算并标记删除所有已结束的敌人，最后清理实体管理器
func (s *ReapSystem) Update() ReapResult {
	var res ReapResult
	em := s.entityManager
	for _, id := range ecs.GetEntitiesWith2[*components.EnemyComponent, *components.HealthComponent](em) {
		if em.IsPendingDestroy(id) {
			continue
		}
		enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, id)
		health, _ := ecs.GetComponent[*components.HealthComponent](em, id)

		switch {
		case enemy.Arrived:
			res.LivesLost++
			logger.Log.Debugf("[ReapSystem] %s (entity %d) reached the goal", enemy.Type, id)
		case enemy.Stuck:
			res.Stuck++
		case health.Current <= 0:
			res.Kills++
			res.Gold += s.KillReward(enemy.Reward)
			if enemy.Type.IsBoss() {
				res.BossKills++
				logger.Log.WithFields(logrus.Fields{
					"type":   enemy.Type,
					"entity": id,
				}).Info("[ReapSystem] Boss defeated")
			}
		default:
			continue
		}
		em.DestroyEntity(id)
	}
	em.RemoveMarkedEntities()
	return res
}

// KillReward 计算击杀奖励
func (s *ReapSystem) KillReward(base int) int {
	return int(float64(base) * s.effects.EnemyRewardMult * s.effects.KillRewardMult)
}
