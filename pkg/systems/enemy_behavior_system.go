package systems

import (
	"math"

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

// EnemyBehaviorSystem 敌人行为系统
//
// 每帧对每个存活敌人依次执行：
//  1. 冰冻免疫计时递减
//  2. 推进状态效果并结算燃烧/流血伤害
//  3. 血量阈值一次性技能
//  4. Boss 周期技能（牛头怪眩晕脉冲）
//  5. 冰冻或被钉住时跳过移动
//  6. 路径缺失、走完或地图版本变化时重新寻路，寻路失败则移除
//  7. 沿路径点移动
//  8. 治疗者链式治疗
type EnemyBehaviorSystem struct {
	bf        *Battlefield
	grid      *maze.Grid
	paths     *pathfinding.PathCache
	enemyCfg  *config.EnemyStatsConfig
	abilities config.AbilityConfig
	lanes     []maze.Point
}

// NewEnemyBehaviorSystem 创建敌人行为系统
//
// 参数：
//   - bf: 共享战斗状态
//   - grid: 地图网格
//   - paths: 路径缓存（地图变化时由调用方失效）
//   - enemyCfg: 敌人属性配置（召唤护卫时使用）
//   - lanes: 当前路线入口列表
func NewEnemyBehaviorSystem(bf *Battlefield, grid *maze.Grid, paths *pathfinding.PathCache, enemyCfg *config.EnemyStatsConfig, lanes []maze.Point) *EnemyBehaviorSystem {
	return &EnemyBehaviorSystem{
		bf:        bf,
		grid:      grid,
		paths:     paths,
		enemyCfg:  enemyCfg,
		abilities: enemyCfg.Abilities,
		lanes:     lanes,
	}
}

// SetLanes 路线扩展后更新路线入口列表
func (s *EnemyBehaviorSystem) SetLanes(lanes []maze.Point) {
	s.lanes = lanes
}

// Update 推进所有敌人一帧
// 本帧召唤出的护卫从下一帧开始行动
func (s *EnemyBehaviorSystem) Update(dt float64) {
	for _, id := range LiveEnemies(s.bf.EM) {
		if !IsAlive(s.bf.EM, id) {
			continue
		}
		s.updateEnemy(id, dt)
	}
}

func (s *EnemyBehaviorSystem) updateEnemy(id ecs.EntityID, dt float64) {
	em := s.bf.EM
	enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, id)
	health, _ := ecs.GetComponent[*components.HealthComponent](em, id)
	st, ok := ecs.GetComponent[*components.StatusComponent](em, id)
	if !ok {
		st = components.NewStatusComponent(0)
		ecs.AddComponent(em, id, st)
	}

	if st.FreezeImmunity > 0 {
		st.FreezeImmunity = math.Max(0, st.FreezeImmunity-dt)
	}

	burnDPS, bleedDPS := s.bf.Status.Tick(st, dt)
	if burnDPS > 0 {
		s.bf.Damage.TakeDamage(id, Hit{Amount: burnDPS * dt, Type: types.DamageMagic, Source: types.SourceStatus, Continuous: true})
	}
	if bleedDPS > 0 {
		s.bf.Damage.TakeDamage(id, Hit{Amount: bleedDPS * dt, Type: types.DamagePhysical, Source: types.SourceStatus, Continuous: true})
	}
	if health.Current <= 0 {
		return
	}

	s.checkThresholds(id, enemy, health, st)

	if minotaur, ok := ecs.GetComponent[*components.MinotaurAbilityComponent](em, id); ok {
		s.updateStunPulse(id, minotaur, dt)
	}

	if !st.Immobilized() {
		s.move(id, enemy, health, st, dt)
	}

	if healer, ok := ecs.GetComponent[*components.HealerAbilityComponent](em, id); ok && IsAlive(em, id) {
		s.updateHealer(id, healer, dt)
	}
}

// checkThresholds 按敌人类型检查血量阈值技能
// 每项技能只触发一次，恶魔的技能在前置条件满足前会在后续帧重试
func (s *EnemyBehaviorSystem) checkThresholds(id ecs.EntityID, enemy *components.EnemyComponent, health *components.HealthComponent, st *components.StatusComponent) {
	em := s.bf.EM
	frac := health.Fraction()
	a := s.abilities

	switch enemy.Type {
	case types.EnemyFighter:
		if f, ok := ecs.GetComponent[*components.FighterAbilityComponent](em, id); ok && !f.ShieldUsed && frac <= a.FighterShieldTrigger {
			f.ShieldUsed = true
			health.Shield = health.Max * a.FighterShieldFraction
			logger.Log.Debugf("[EnemyBehaviorSystem] Fighter %d raised shield %.1f", id, health.Shield)
		}

	case types.EnemyTank:
		if t, ok := ecs.GetComponent[*components.TankAbilityComponent](em, id); ok && !t.Fortified && frac <= a.TankFortifyTrigger {
			t.Fortified = true
			if r, ok := ecs.GetComponent[*components.ResistComponent](em, id); ok {
				r.BasePhys = math.Min(a.TankResistCap, r.BasePhys*2)
				r.BaseMagic = math.Min(a.TankResistCap, r.BaseMagic*2)
				r.Phys, r.Magic = r.BasePhys, r.BaseMagic
			}
			logger.Log.Debugf("[EnemyBehaviorSystem] Tank %d fortified", id)
		}

	case types.EnemyAssassin:
		if as, ok := ecs.GetComponent[*components.AssassinAbilityComponent](em, id); ok && !as.EmergencyUsed && frac <= a.AssassinTrigger {
			as.EmergencyUsed = true
			if !s.teleportToHealer(id, enemy) {
				as.DodgeBase = a.AssassinBoostDodge
				as.DodgeStreak = 0
				if mv, ok := ecs.GetComponent[*components.MovementComponent](em, id); ok {
					mv.SpeedMult *= a.AssassinBoostSpeed
				}
				logger.Log.Debugf("[EnemyBehaviorSystem] Assassin %d boosted dodge and speed", id)
			}
		}

	case types.EnemyMinotaurBoss:
		if m, ok := ecs.GetComponent[*components.MinotaurAbilityComponent](em, id); ok && !m.Phase2 && frac <= a.MinotaurPhaseTrigger {
			m.Phase2 = true
			if r, ok := ecs.GetComponent[*components.ResistComponent](em, id); ok {
				*r = components.ResistComponent{}
			}
			if mv, ok := ecs.GetComponent[*components.MovementComponent](em, id); ok {
				mv.SpeedMult *= a.MinotaurPhaseSpeed
			}
			s.bf.Status.EnterImpairImmunity(st)
			logger.Log.WithFields(logrus.Fields{
				"enemy": id,
				"hp":    health.Current,
			}).Info("[EnemyBehaviorSystem] Minotaur entered phase 2")
		}

	case types.EnemyDemonBoss:
		d, ok := ecs.GetComponent[*components.DemonAbilityComponent](em, id)
		if !ok {
			return
		}
		if !d.LaneSwapped && frac <= a.DemonLaneSwapTrigger && s.swapLane(id, enemy) {
			d.LaneSwapped = true
		}
		if !d.MinionsSpawned && frac <= a.DemonMinionTrigger && s.spawnMinions(id, enemy, st) {
			d.MinionsSpawned = true
		}
		if !d.Teleported && frac <= a.DemonTeleportTrigger && s.teleportForward(id) {
			d.Teleported = true
		}
	}
}

// teleportToHealer 把刺客瞬移到最近的存活治疗者身边，共享其路径进度
func (s *EnemyBehaviorSystem) teleportToHealer(id ecs.EntityID, enemy *components.EnemyComponent) bool {
	em := s.bf.EM
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	mv, _ := ecs.GetComponent[*components.MovementComponent](em, id)

	var nearest ecs.EntityID
	best := math.Inf(1)
	for _, other := range ecs.GetEntitiesWith1[*components.HealerAbilityComponent](em) {
		if other == id || !IsAlive(em, other) {
			continue
		}
		hp, _ := ecs.GetComponent[*components.PositionComponent](em, other)
		if d := Distance(pos.X, pos.Y, hp.X, hp.Y); d < best {
			best, nearest = d, other
		}
	}
	if nearest == 0 {
		return false
	}

	healerPos, _ := ecs.GetComponent[*components.PositionComponent](em, nearest)
	healerMv, _ := ecs.GetComponent[*components.MovementComponent](em, nearest)
	healerEnemy, _ := ecs.GetComponent[*components.EnemyComponent](em, nearest)
	pos.X, pos.Y = healerPos.X, healerPos.Y
	mv.Path, mv.Cursor, mv.Epoch = healerMv.Path, healerMv.Cursor, healerMv.Epoch
	enemy.Lane = healerEnemy.Lane

	logger.Log.Debugf("[EnemyBehaviorSystem] Assassin %d teleported to healer %d", id, nearest)
	return true
}

// swapLane 恶魔换到覆盖防御塔最少的另一条路线，保持剩余路程不变
// 需要至少两条路线且场上至少有一座防御塔
func (s *EnemyBehaviorSystem) swapLane(id ecs.EntityID, enemy *components.EnemyComponent) bool {
	em := s.bf.EM
	mv, _ := ecs.GetComponent[*components.MovementComponent](em, id)
	if len(s.lanes) < 2 || mv.Path == nil {
		return false
	}
	towers := s.activeTowers()
	if len(towers) == 0 {
		return false
	}

	bestLane := -1
	bestCount := math.MaxInt
	var bestPath []maze.Point
	for i, entry := range s.lanes {
		if i == enemy.Lane {
			continue
		}
		path := s.paths.Get(entry, enemy.Goal)
		if len(path) == 0 {
			continue
		}
		if count := s.towersCovering(path, towers); count < bestCount {
			bestLane, bestCount, bestPath = i, count, path
		}
	}
	if bestLane < 0 {
		return false
	}

	j := len(bestPath) - 1 - mv.Remaining()
	if j < 0 {
		j = 0
	}
	if j > len(bestPath)-1 {
		j = len(bestPath) - 1
	}

	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	pos.X, pos.Y = entities.TileCenter(bestPath[j], s.bf.TileSize)
	mv.Path, mv.Cursor, mv.Epoch = bestPath, j+1, s.paths.Epoch()

	logger.Log.WithFields(logrus.Fields{
		"enemy":  id,
		"from":   enemy.Lane,
		"to":     bestLane,
		"towers": bestCount,
	}).Info("[EnemyBehaviorSystem] Demon swapped lanes")
	enemy.Lane = bestLane
	return true
}

// spawnMinions 在恶魔所在位置召唤护卫，护卫沿用恶魔的路径进度
func (s *EnemyBehaviorSystem) spawnMinions(id ecs.EntityID, enemy *components.EnemyComponent, st *components.StatusComponent) bool {
	em := s.bf.EM
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	mv, _ := ecs.GetComponent[*components.MovementComponent](em, id)
	tile := s.bf.TileOf(pos.X, pos.Y)

	for i := 0; i < s.abilities.DemonMinionCount; i++ {
		minion, err := entities.NewEnemyEntity(em, s.enemyCfg, s.bf.TileSize, entities.EnemySpawn{
			Type:         types.EnemySwarm,
			Lane:         enemy.Lane,
			Tile:         tile,
			Goal:         enemy.Goal,
			Scale:        enemy.Scale,
			FreezeResist: st.FreezeResist,
			SpeedMult:    s.bf.Effects.EnemySpeedMult,
		})
		if err != nil {
			logger.Log.Warnf("[EnemyBehaviorSystem] Demon %d failed to summon minion: %v", id, err)
			return false
		}
		mpos, _ := ecs.GetComponent[*components.PositionComponent](em, minion)
		mpos.X, mpos.Y = pos.X, pos.Y
		mmv, _ := ecs.GetComponent[*components.MovementComponent](em, minion)
		mmv.Path, mmv.Cursor, mmv.Epoch = mv.Path, mv.Cursor, mv.Epoch
	}

	logger.Log.Infof("[EnemyBehaviorSystem] Demon %d summoned %d escorts", id, s.abilities.DemonMinionCount)
	return true
}

// teleportForward 恶魔沿路径向前瞬移，但不会进入终点前的安全距离
func (s *EnemyBehaviorSystem) teleportForward(id ecs.EntityID) bool {
	em := s.bf.EM
	mv, _ := ecs.GetComponent[*components.MovementComponent](em, id)
	if mv.Path == nil || mv.Cursor < 1 {
		return false
	}
	current := mv.Cursor - 1
	target := current + s.abilities.DemonTeleportAdvance
	if limit := len(mv.Path) - 1 - s.abilities.DemonTeleportGoalSafe; target > limit {
		target = limit
	}
	if target <= current {
		return false
	}

	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	pos.X, pos.Y = entities.TileCenter(mv.Path[target], s.bf.TileSize)
	mv.Cursor = target + 1

	logger.Log.Infof("[EnemyBehaviorSystem] Demon %d teleported %d waypoints", id, target-current)
	return true
}

// updateStunPulse 牛头怪周期性眩晕附近防御塔
// 范围内没有防御塔时计时停在 0，等到有目标再释放
func (s *EnemyBehaviorSystem) updateStunPulse(id ecs.EntityID, m *components.MinotaurAbilityComponent, dt float64) {
	m.StunTimer -= dt
	if m.StunTimer > 0 {
		return
	}
	m.StunTimer = 0

	pos, _ := ecs.GetComponent[*components.PositionComponent](s.bf.EM, id)
	stunned := 0
	for _, tid := range s.activeTowers() {
		tpos, _ := ecs.GetComponent[*components.PositionComponent](s.bf.EM, tid)
		if !InRange(pos.X, pos.Y, tpos.X, tpos.Y, s.abilities.MinotaurStunRadius) {
			continue
		}
		tower, _ := ecs.GetComponent[*components.TowerComponent](s.bf.EM, tid)
		tower.StunTimer = math.Max(tower.StunTimer, s.abilities.MinotaurStunDuration)
		stunned++
	}
	if stunned == 0 {
		return
	}
	m.StunTimer = s.abilities.MinotaurStunInterval
	logger.Log.Debugf("[EnemyBehaviorSystem] Minotaur %d stunned %d towers", id, stunned)
}

// updateHealer 治疗者按间隔对附近受伤友军进行链式治疗
func (s *EnemyBehaviorSystem) updateHealer(id ecs.EntityID, h *components.HealerAbilityComponent, dt float64) {
	h.Timer += dt
	if h.Timer < s.abilities.HealerInterval {
		return
	}
	h.Timer -= s.abilities.HealerInterval

	em := s.bf.EM
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	cx, cy := pos.X, pos.Y
	visited := map[ecs.EntityID]bool{id: true}
	alive := LiveEnemies(em)

	for hop := 0; hop < s.abilities.HealerChainTargets; hop++ {
		var next ecs.EntityID
		best := math.Inf(1)
		for _, other := range alive {
			if visited[other] {
				continue
			}
			hp, _ := ecs.GetComponent[*components.HealthComponent](em, other)
			if hp.Current >= hp.Max {
				continue
			}
			op, _ := ecs.GetComponent[*components.PositionComponent](em, other)
			d := Distance(cx, cy, op.X, op.Y)
			if d <= s.abilities.HealerRadius && d < best {
				best, next = d, other
			}
		}
		if next == 0 {
			return
		}
		visited[next] = true
		hp, _ := ecs.GetComponent[*components.HealthComponent](em, next)
		hp.Current = math.Min(hp.Max, hp.Current+hp.Max*s.abilities.HealerFraction)
		op, _ := ecs.GetComponent[*components.PositionComponent](em, next)
		cx, cy = op.X, op.Y
	}
}

// move 沿缓存路径移动，本帧剩余步长会跨路径点继续消耗
func (s *EnemyBehaviorSystem) move(id ecs.EntityID, enemy *components.EnemyComponent, health *components.HealthComponent, st *components.StatusComponent, dt float64) {
	em := s.bf.EM
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	mv, _ := ecs.GetComponent[*components.MovementComponent](em, id)

	if s.bf.TileOf(pos.X, pos.Y) == enemy.Goal {
		enemy.Arrived = true
		return
	}

	if mv.Path == nil || mv.Cursor >= len(mv.Path) || mv.Epoch != s.paths.Epoch() {
		if !s.repath(pos, mv, enemy.Goal) {
			enemy.Stuck = true
			health.Current = 0
			logger.Log.WithFields(logrus.Fields{
				"enemy": id,
				"type":  enemy.Type,
				"lane":  enemy.Lane,
			}).Warn("[EnemyBehaviorSystem] No route to goal, removing enemy")
			return
		}
	}

	step := mv.BaseSpeed * mv.SpeedMult * s.bf.Status.SlowMultiplier(st) * dt
	for step > 0 && mv.Cursor < len(mv.Path) {
		tx, ty := entities.TileCenter(mv.Path[mv.Cursor], s.bf.TileSize)
		d := Distance(pos.X, pos.Y, tx, ty)
		if d <= step {
			pos.X, pos.Y = tx, ty
			step -= d
			mv.Cursor++
			continue
		}
		pos.X += (tx - pos.X) / d * step
		pos.Y += (ty - pos.Y) / d * step
		step = 0
	}

	if s.bf.TileOf(pos.X, pos.Y) == enemy.Goal {
		enemy.Arrived = true
	}
}

// repath 从锚点格重新请求路径
// 锚点优先取当前所在路径格，其次取上一个经过的路径点，最后取最近的路径格
func (s *EnemyBehaviorSystem) repath(pos *components.PositionComponent, mv *components.MovementComponent, goal maze.Point) bool {
	tile := s.bf.TileOf(pos.X, pos.Y)
	anchor := tile
	if !s.grid.IsPath(tile) {
		if mv.Cursor >= 1 && mv.Cursor-1 < len(mv.Path) && s.grid.IsPath(mv.Path[mv.Cursor-1]) {
			anchor = mv.Path[mv.Cursor-1]
		} else if p, ok := s.nearestPathTile(tile); ok {
			anchor = p
		}
	}

	path := s.paths.Get(anchor, goal)
	if len(path) == 0 {
		mv.Path, mv.Cursor = nil, 0
		return false
	}
	mv.Path = path
	mv.Epoch = s.paths.Epoch()
	if anchor == tile && len(path) > 1 {
		mv.Cursor = 1
	} else {
		mv.Cursor = 0
	}
	return true
}

// nearestPathTile 按曼哈顿距离由近到远寻找路径格
func (s *EnemyBehaviorSystem) nearestPathTile(from maze.Point) (maze.Point, bool) {
	maxR := s.grid.Width + s.grid.Height
	for r := 1; r <= maxR; r++ {
		for dx := -r; dx <= r; dx++ {
			dy := r - abs(dx)
			for _, p := range []maze.Point{{X: from.X + dx, Y: from.Y + dy}, {X: from.X + dx, Y: from.Y - dy}} {
				if s.grid.IsPath(p) {
					return p, true
				}
			}
		}
	}
	return maze.Point{}, false
}

// activeTowers 返回未出售的防御塔
func (s *EnemyBehaviorSystem) activeTowers() []ecs.EntityID {
	em := s.bf.EM
	ids := ecs.GetEntitiesWith2[*components.TowerComponent, *components.PositionComponent](em)
	out := ids[:0]
	for _, id := range ids {
		if em.IsPendingDestroy(id) {
			continue
		}
		if up, ok := ecs.GetComponent[*components.UpgradeComponent](em, id); ok && up.Sold {
			continue
		}
		out = append(out, id)
	}
	return out
}

// towersCovering 统计射程覆盖到路径任意一格的防御塔数量
func (s *EnemyBehaviorSystem) towersCovering(path []maze.Point, towers []ecs.EntityID) int {
	count := 0
	for _, tid := range towers {
		tpos, _ := ecs.GetComponent[*components.PositionComponent](s.bf.EM, tid)
		tower, _ := ecs.GetComponent[*components.TowerComponent](s.bf.EM, tid)
		r := EffectiveRange(tower, s.bf.Effects)
		for _, p := range path {
			x, y := entities.TileCenter(p, s.bf.TileSize)
			if InRange(tpos.X, tpos.Y, x, y, r) {
				count++
				break
			}
		}
	}
	return count
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
