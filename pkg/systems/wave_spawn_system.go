package systems

import (
	"math/rand"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/entities"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/pathfinding"
	"github.com/gonewx/mazetd/pkg/types"
	"github.com/sirupsen/logrus"
)

// WaveSpawnSystem 波次生成系统
//
// 职责：
//   - 按波次规则决定每波的敌人数量与生成间隔
//   - 每次生成时选择敌人类型与路线（平滑权重分配）
//   - 虫群成批生成，并按本波序号衰减奖励
//   - Boss 波的最后一个敌人是 Boss，从本波开始时选定的路线出现
//
// 本波第一个敌人在一个生成间隔之后出现
type WaveSpawnSystem struct {
	entityManager *ecs.EntityManager
	enemyCfg      *config.EnemyStatsConfig
	scheduler     *WaveScheduler
	difficulty    *DifficultyEngine
	lanes         *LaneAllocator
	paths         *pathfinding.PathCache
	effects       config.RunEffects
	goal          maze.Point
	tileSize      float64
	rng           *rand.Rand

	wave       int
	targetWave int
	remaining  int // 本波剩余生成数量（含 Boss）
	total      int
	timer      float64
	interval   float64
	bossLane   int
	swarmIndex int
}

// NewWaveSpawnSystem 创建波次生成系统
//
// 参数：
//   - em: 实体管理器
//   - enemyCfg: 敌人属性配置
//   - scheduler: 波次生成策略
//   - difficulty: 难度引擎
//   - lanes: 路线分配器
//   - paths: 路径缓存（用于排除无法到达终点的路线）
//   - effects: 局内修正
//   - goal: 终点格
//   - tileSize: 格子边长
//   - targetWave: 目标波次（敌人数量曲线在此封顶）
func NewWaveSpawnSystem(em *ecs.EntityManager, enemyCfg *config.EnemyStatsConfig, scheduler *WaveScheduler, difficulty *DifficultyEngine,
	lanes *LaneAllocator, paths *pathfinding.PathCache, effects config.RunEffects, goal maze.Point, tileSize float64, targetWave int, rng *rand.Rand) *WaveSpawnSystem {
	return &WaveSpawnSystem{
		entityManager: em,
		enemyCfg:      enemyCfg,
		scheduler:     scheduler,
		difficulty:    difficulty,
		lanes:         lanes,
		paths:         paths,
		effects:       effects,
		goal:          goal,
		tileSize:      tileSize,
		targetWave:    targetWave,
		rng:           rng,
	}
}

// StartWave 开始新的一波
func (s *WaveSpawnSystem) StartWave(wave int) {
	s.wave = wave
	s.total = s.scheduler.GetWaveEnemyCount(wave, s.targetWave)
	s.remaining = s.total
	s.interval = s.scheduler.GetSpawnInterval(wave)
	s.timer = 0
	s.swarmIndex = 0
	s.bossLane = 0
	if n := s.lanes.LaneCount(); n > 0 {
		s.bossLane = s.rng.Intn(n)
	}

	logger.Log.WithFields(logrus.Fields{
		"wave":     wave,
		"enemies":  s.total,
		"interval": s.interval,
		"boss":     s.scheduler.IsBossWave(wave),
		"lanes":    s.lanes.LaneCount(),
	}).Info("[WaveSpawnSystem] Wave started")
	s.lanes.LogLaneSelectionProbability()
}

// Wave 返回当前波次
func (s *WaveSpawnSystem) Wave() int {
	return s.wave
}

// Remaining 返回本波尚未生成的敌人数量
func (s *WaveSpawnSystem) Remaining() int {
	return s.remaining
}

// Total 返回本波敌人总数
func (s *WaveSpawnSystem) Total() int {
	return s.total
}

// SpawningDone 本波是否已全部生成
func (s *WaveSpawnSystem) SpawningDone() bool {
	return s.remaining <= 0
}

// Update 推进生成计时，到达间隔时生成下一个（或一批）敌人
//
// 返回：
//   - []ecs.EntityID: 本帧生成的敌人
func (s *WaveSpawnSystem) Update(dt float64) []ecs.EntityID {
	if s.remaining <= 0 {
		return nil
	}
	s.timer += dt
	if s.timer < s.interval {
		return nil
	}
	s.timer -= s.interval
	return s.spawnNext()
}

func (s *WaveSpawnSystem) spawnNext() []ecs.EntityID {
	boss := s.scheduler.IsBossWave(s.wave)
	if boss && s.remaining == 1 {
		s.remaining--
		if id, ok := s.spawn(s.scheduler.BossType(s.wave), s.bossLane, true); ok {
			return []ecs.EntityID{id}
		}
		return nil
	}

	budget := s.remaining
	if boss {
		budget--
	}
	living := len(LiveEnemies(s.entityManager))
	enemyType := s.scheduler.ChooseEnemyType(s.wave, living, budget)
	lane := s.lanes.SelectLane(s.laneReachable)
	s.lanes.UpdateLaneCounters(lane)

	count := 1
	if enemyType == types.EnemySwarm {
		count = s.difficulty.waveRules.Swarm.BurstSize
		if count > budget {
			count = budget
		}
	}

	spawned := make([]ecs.EntityID, 0, count)
	for i := 0; i < count; i++ {
		s.remaining--
		id, ok := s.spawn(enemyType, lane, false)
		if !ok {
			continue
		}
		if enemyType == types.EnemySwarm {
			s.swarmIndex++
			if enemy, ok := ecs.GetComponent[*components.EnemyComponent](s.entityManager, id); ok {
				enemy.Reward = s.difficulty.CalculateSwarmReward(enemy.Reward, s.swarmIndex)
			}
		}
		spawned = append(spawned, id)
	}
	return spawned
}

func (s *WaveSpawnSystem) spawn(enemyType types.EnemyType, lane int, boss bool) (ecs.EntityID, bool) {
	entry, ok := s.lanes.Entry(lane)
	if !ok {
		logger.Log.Warnf("[WaveSpawnSystem] Lane %d does not exist, skipping %s", lane, enemyType)
		return 0, false
	}
	id, err := entities.NewEnemyEntity(s.entityManager, s.enemyCfg, s.tileSize, entities.EnemySpawn{
		Type:         enemyType,
		Lane:         lane,
		Tile:         entry,
		Goal:         s.goal,
		Scale:        s.difficulty.CalculateScale(s.wave),
		FreezeResist: s.difficulty.CalculateFreezeResist(s.wave, boss),
		SpeedMult:    s.effects.EnemySpeedMult,
	})
	if err != nil {
		logger.Log.Errorf("[WaveSpawnSystem] Failed to spawn %s: %v", enemyType, err)
		return 0, false
	}
	if boss {
		logger.Log.WithFields(logrus.Fields{
			"wave": s.wave,
			"type": enemyType,
			"lane": lane,
		}).Info("[WaveSpawnSystem] Boss spawned")
	} else {
		logger.Log.Debugf("[WaveSpawnSystem] Spawned %s on lane %d (entity %d)", enemyType, lane, id)
	}
	return id, true
}

// laneReachable 路线入口当前能否到达终点
func (s *WaveSpawnSystem) laneReachable(lane int) bool {
	entry, ok := s.lanes.Entry(lane)
	if !ok {
		return false
	}
	return len(s.paths.Get(entry, s.goal)) > 0
}
