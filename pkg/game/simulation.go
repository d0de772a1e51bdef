package game

import (
	"math/rand"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/pathfinding"
	"github.com/gonewx/mazetd/pkg/spatial"
	"github.com/gonewx/mazetd/pkg/systems"
	"github.com/gonewx/mazetd/pkg/types"
	"github.com/sirupsen/logrus"
)

// projectilePrealloc 投射物对象池预分配数量
const projectilePrealloc = 64

// Options 创建模拟的参数
// 配置为 nil 时使用内置默认值
type Options struct {
	Seed       int64
	TargetWave int   // 不大于 0 时使用对局配置的默认目标波次
	Modifiers  []int // 本局选择的修正 ID，按顺序应用

	Game       *config.GameConfig
	Enemies    *config.EnemyStatsConfig
	Structures *config.StructureStatsConfig
	Waves      *config.WaveRulesConfig
	ModifierDB *config.ModifiersConfig
}

func (o *Options) fillDefaults() {
	if o.Game == nil {
		o.Game = config.DefaultGameConfig()
	}
	if o.Enemies == nil {
		o.Enemies = config.DefaultEnemyStats()
	}
	if o.Structures == nil {
		o.Structures = config.DefaultStructureStats()
	}
	if o.Waves == nil {
		o.Waves = config.DefaultWaveRules()
	}
	if o.ModifierDB == nil {
		o.ModifierDB = config.DefaultModifiers()
	}
}

// Simulation 一局塔防模拟
//
// 每帧调用一次 Tick，严格按以下顺序推进：
// 生成 → 敌人 → 重建空间索引 → 防御塔 → 哨兵 → 应用位移 → 投射物/激光 → 陷阱 → 回收 → 波次推进
//
// 所有随机决策都来自同一个以 Seed 初始化的随机源，相同种子与相同操作序列得到相同结果。
type Simulation struct {
	State *GameState
	Seed  int64

	gameCfg     *config.GameConfig
	structCfg   *config.StructureStatsConfig
	tileSize    float64
	grid        *maze.Grid
	lanes       []maze.Point
	goal        maze.Point
	rng         *rand.Rand
	em          *ecs.EntityManager
	paths       *pathfinding.PathCache
	battlefield *systems.Battlefield

	laneAlloc   *systems.LaneAllocator
	scheduler   *systems.WaveScheduler
	spawner     *systems.WaveSpawnSystem
	enemies     *systems.EnemyBehaviorSystem
	towers      *systems.TowerSystem
	pool        *systems.ProjectilePool
	lasers      *systems.LaserSet
	projectiles *systems.ProjectileSystem
	sentinels   *systems.SentinelSystem
	traps       *systems.TrapSystem
	reaper      *systems.ReapSystem

	speedIndex   int
	paused       bool
	waveActive   bool
	intermission float64 // 距下一波开始的剩余时间
	elapsed      float64 // 累计模拟时间（已乘速度倍率）
}

// NewSimulation 生成地图、组装所有系统并开始第一波
func NewSimulation(opts Options) *Simulation {
	opts.fillDefaults()
	rng := rand.New(rand.NewSource(opts.Seed))
	effects := config.CompileRunEffects(opts.ModifierDB, opts.Modifiers...)

	gc := opts.Game
	layout := maze.Generate(maze.Options{
		Width:      gc.GridWidth,
		Height:     gc.GridHeight,
		LanesMin:   gc.InitialLanesMin,
		LanesMax:   gc.InitialLanesMax,
		MinSpacing: gc.MinLaneSpacing,
		Attempts:   gc.LaneAttempts,
	}, rng)

	s := &Simulation{
		State:     NewGameState(gc, effects, opts.TargetWave),
		Seed:      opts.Seed,
		gameCfg:   gc,
		structCfg: opts.Structures,
		tileSize:  float64(gc.TileSize),
		grid:      layout.Grid,
		lanes:     append([]maze.Point(nil), layout.Lanes...),
		goal:      layout.Goal,
		rng:       rng,
		em:        ecs.NewEntityManager(),
	}
	s.paths = pathfinding.NewPathCache(s.grid)

	status := systems.NewStatusEngine(opts.Enemies.Abilities, effects)
	damage := systems.NewDamageResolver(s.em, rng, opts.Enemies.Abilities)
	s.battlefield = systems.NewBattlefield(s.em, spatial.NewIndex(gc.SpatialCellSize), status, damage, effects, s.goal, s.tileSize)

	difficulty := systems.NewDifficultyEngine(opts.Enemies, opts.Waves)
	s.scheduler = systems.NewWaveScheduler(opts.Waves, difficulty, rng)
	s.laneAlloc = systems.NewLaneAllocator(s.em, rng)
	s.laneAlloc.InitializeLanes(s.lanes, 1.0)
	s.spawner = systems.NewWaveSpawnSystem(s.em, opts.Enemies, s.scheduler, difficulty, s.laneAlloc, s.paths,
		effects, s.goal, s.tileSize, s.State.TargetWave, rng)

	s.enemies = systems.NewEnemyBehaviorSystem(s.battlefield, s.grid, s.paths, opts.Enemies, s.lanes)
	s.pool = systems.NewProjectilePool(projectilePrealloc)
	s.lasers = systems.NewLaserSet()
	s.towers = systems.NewTowerSystem(s.battlefield, s.pool, s.lasers, opts.Structures.ProjectileSpeed)
	s.projectiles = systems.NewProjectileSystem(s.battlefield, s.pool, s.lasers)
	s.sentinels = systems.NewSentinelSystem(s.battlefield, opts.Structures.Sentinel)
	s.traps = systems.NewTrapSystem(s.battlefield)
	s.reaper = systems.NewReapSystem(s.em, effects)

	logger.Log.WithFields(logrus.Fields{
		"run":        s.State.RunID,
		"seed":       opts.Seed,
		"lanes":      len(s.lanes),
		"targetWave": s.State.TargetWave,
		"modifiers":  effects.ModifierIDs,
	}).Info("[Simulation] Run started")

	s.startNextWave()
	return s
}

// Tick 推进一帧
// frameDt 为真实帧间隔（秒），乘以当前速度倍率后用于所有系统；暂停或对局结束时不推进
func (s *Simulation) Tick(frameDt float64) {
	if s.paused || s.State.IsOver() || frameDt <= 0 {
		return
	}
	dt := frameDt * s.SpeedMultiplier()
	s.elapsed += dt

	s.spawner.Update(dt)
	s.enemies.Update(dt)
	s.battlefield.RebuildSpatialIndex()
	s.projectiles.Add(s.towers.Update(dt)...)
	s.sentinels.Update(dt)
	s.battlefield.FlushDisplacements()
	s.projectiles.Update(dt)
	s.traps.Update(dt)
	s.applyReap(s.reaper.Update())
	s.progressWaves(dt)
}

// applyReap 结算回收结果
func (s *Simulation) applyReap(res systems.ReapResult) {
	gs := s.State
	gs.AddMoney(res.Gold)
	gs.Kills += res.Kills
	gs.BossKills += res.BossKills
	if res.LivesLost > 0 {
		gs.LoseLives(res.LivesLost)
		if gs.Lost {
			s.projectiles.Clear()
			logger.Log.WithFields(logrus.Fields{
				"run":   gs.RunID,
				"wave":  gs.Wave,
				"kills": gs.Kills,
			}).Info("[Simulation] Run lost")
		}
	}
}

// progressWaves 判断当前波是否清空，并在间隔结束后开始下一波
func (s *Simulation) progressWaves(dt float64) {
	gs := s.State
	if gs.IsOver() {
		return
	}

	if s.waveActive {
		if !s.spawner.SpawningDone() || len(systems.LiveEnemies(s.em)) > 0 {
			return
		}
		s.waveActive = false
		gs.WavesCleared++
		if gs.Wave >= gs.TargetWave {
			gs.Won = true
			s.projectiles.Clear()
			logger.Log.WithFields(logrus.Fields{
				"run":   gs.RunID,
				"wave":  gs.Wave,
				"kills": gs.Kills,
				"lives": gs.Lives,
			}).Info("[Simulation] Run won")
			return
		}
		s.intermission = s.gameCfg.WaveIntermission
		logger.Log.Debugf("[Simulation] Wave %d cleared, next wave in %.1fs", gs.Wave, s.intermission)
		return
	}

	s.intermission -= dt
	if s.intermission <= 0 {
		s.startNextWave()
	}
}

// startNextWave 开始下一波：扩展波先开新路线，随后结算利息并开始生成
func (s *Simulation) startNextWave() {
	wave := s.State.Wave + 1
	if s.scheduler.IsExpansionWave(wave) {
		s.expandLanes()
	}
	interest := s.State.startWave(wave)
	s.spawner.StartWave(wave)
	s.waveActive = true
	s.intermission = 0

	if interest > 0 {
		logger.Log.WithFields(logrus.Fields{
			"wave":     wave,
			"interest": interest,
			"money":    s.State.Money,
		}).Debug("[Simulation] Interest credited")
	}
}

// expandLanes 新开一条路线
// 新路线经过的格子上的防御塔与哨兵被拆除（不返还金币）
func (s *Simulation) expandLanes() {
	var ids []ecs.EntityID
	var tiles []maze.Point
	for _, id := range ecs.GetEntitiesWith1[*components.StructureComponent](s.em) {
		if s.em.IsPendingDestroy(id) {
			continue
		}
		st, _ := ecs.GetComponent[*components.StructureComponent](s.em, id)
		if st.Kind == types.StructureTrap {
			continue
		}
		ids = append(ids, id)
		tiles = append(tiles, st.Tile)
	}

	exp, ok := maze.ExpandLanes(s.grid, tiles, s.lanes, s.gameCfg.MaxLanes, s.gameCfg.MinLaneSpacing, s.rng)
	if !ok {
		return
	}
	for _, i := range exp.DemolishedTowers {
		s.removeStructure(ids[i])
		logger.Log.WithFields(logrus.Fields{
			"structure": ids[i],
			"tile":      tiles[i],
		}).Info("[Simulation] Structure demolished by new lane")
	}

	s.paths.Invalidate()
	s.lanes = append(s.lanes, exp.Lane)
	s.laneAlloc.AddLane(exp.Lane)
	s.enemies.SetLanes(s.lanes)
}

// removeStructure 标记建筑删除（实际移除在本帧回收阶段）
func (s *Simulation) removeStructure(id ecs.EntityID) {
	if up, ok := ecs.GetComponent[*components.UpgradeComponent](s.em, id); ok {
		up.Sold = true
	}
	s.lasers.Drop(id)
	s.em.DestroyEntity(id)
}

// SetSpeed 按下标选择速度倍率，越界时不做修改
func (s *Simulation) SetSpeed(index int) bool {
	if index < 0 || index >= len(s.gameCfg.SpeedMultipliers) {
		return false
	}
	s.speedIndex = index
	return true
}

// CycleSpeed 切换到下一档速度倍率
func (s *Simulation) CycleSpeed() float64 {
	s.speedIndex = (s.speedIndex + 1) % len(s.gameCfg.SpeedMultipliers)
	return s.SpeedMultiplier()
}

// SpeedIndex 返回当前速度档位下标
func (s *Simulation) SpeedIndex() int {
	return s.speedIndex
}

// SpeedMultiplier 返回当前速度倍率
func (s *Simulation) SpeedMultiplier() float64 {
	return s.gameCfg.SpeedMultipliers[s.speedIndex]
}

// TogglePause 切换暂停状态，返回切换后是否暂停
func (s *Simulation) TogglePause() bool {
	s.paused = !s.paused
	return s.paused
}

// Paused 是否暂停
func (s *Simulation) Paused() bool {
	return s.paused
}

// WaveActive 当前波是否仍在进行
func (s *Simulation) WaveActive() bool {
	return s.waveActive
}

// Intermission 距下一波开始的剩余时间
func (s *Simulation) Intermission() float64 {
	if s.waveActive || s.intermission < 0 {
		return 0
	}
	return s.intermission
}

// WaveRemaining 本波尚未生成的敌人数量
func (s *Simulation) WaveRemaining() int {
	return s.spawner.Remaining()
}

// Elapsed 累计模拟时间（秒）
func (s *Simulation) Elapsed() float64 {
	return s.elapsed
}

// EntityManager 返回实体管理器（渲染层只读）
func (s *Simulation) EntityManager() *ecs.EntityManager {
	return s.em
}

// Grid 返回地图网格（渲染层只读）
func (s *Simulation) Grid() *maze.Grid {
	return s.grid
}

// Lanes 返回路线入口
func (s *Simulation) Lanes() []maze.Point {
	return s.lanes
}

// Goal 返回终点格
func (s *Simulation) Goal() maze.Point {
	return s.goal
}

// TileSize 返回格子边长（像素）
func (s *Simulation) TileSize() float64 {
	return s.tileSize
}

// Projectiles 返回飞行中的投射物（只读）
func (s *Simulation) Projectiles() []*systems.Projectile {
	return s.projectiles.Active()
}

// Lasers 返回当前冰塔激光（只读）
func (s *Simulation) Lasers() []*systems.IceLaser {
	return s.lasers.All()
}

// LiveEnemies 返回存活敌人
func (s *Simulation) LiveEnemies() []ecs.EntityID {
	return systems.LiveEnemies(s.em)
}

// PathStats 返回路径缓存命中统计
func (s *Simulation) PathStats() (hits, misses int) {
	return s.paths.Stats()
}

// Record 生成本局记录
func (s *Simulation) Record() RunRecord {
	return NewRunRecord(s.State, s.Seed)
}
