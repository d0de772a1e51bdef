package game

import (
	"fmt"
	"math"
	"sort"

	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/quasilyte/gdata/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// 对局经验
const (
	XPPerWave     = 25
	XPPerBossKill = 50
	XPVictory     = 100

	// maxRunHistory 保留的最近对局记录数
	maxRunHistory = 20
)

// 存储路径常量
const (
	progressionObject   = "progression"
	progressionProperty = "player"
)

// PlayerProgression 跨对局的玩家成长数据
type PlayerProgression struct {
	Level             int         `yaml:"level"`
	XP                int         `yaml:"xp"`
	UnlockedModifiers []int       `yaml:"unlockedModifiers"`
	RecentRuns        []RunRecord `yaml:"recentRuns,omitempty"`
}

// ProgressResult 一次经验结算的结果
type ProgressResult struct {
	XPGained      int
	LevelsGained  int
	NewlyUnlocked []int // 本次新解锁的修正 ID
}

// XPToNext 返回从 level 升到下一级所需经验
func XPToNext(level int) int {
	xp := int(100 * math.Pow(float64(level), 1.35))
	if xp < 1 {
		return 1
	}
	return xp
}

// RunXP 计算一局获得的经验
func RunXP(wavesCleared, bossKills int, won bool) int {
	xp := wavesCleared*XPPerWave + bossKills*XPPerBossKill
	if won {
		xp += XPVictory
	}
	if xp < 0 {
		return 0
	}
	return xp
}

// ProgressionStore 玩家成长存储
// 负责成长数据的加载、保存与经验结算
type ProgressionStore struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式，仅内存）
	modifiers    *config.ModifiersConfig
	progression  *PlayerProgression
}

// NewProgressionStore 创建成长存储
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式）
//   - modifiers: 修正配置（提供默认解锁、等级解锁与旧 ID 映射），nil 时使用内置配置
//
// 返回：
//   - *ProgressionStore: 存储实例（加载失败时使用默认数据）
//   - error: 加载失败的原因（不影响创建）
func NewProgressionStore(gdataManager *gdata.Manager, modifiers *config.ModifiersConfig) (*ProgressionStore, error) {
	if modifiers == nil {
		modifiers = config.DefaultModifiers()
	}
	ps := &ProgressionStore{
		gdataManager: gdataManager,
		modifiers:    modifiers,
	}
	ps.progression = ps.defaultProgression()

	if err := ps.Load(); err != nil {
		logger.Log.Warnf("[ProgressionStore] Failed to load progression: %v (using defaults)", err)
		return ps, err
	}
	return ps, nil
}

func (ps *ProgressionStore) defaultProgression() *PlayerProgression {
	unlocked := append([]int(nil), ps.modifiers.DefaultUnlocked...)
	sort.Ints(unlocked)
	return &PlayerProgression{Level: 1, UnlockedModifiers: unlocked}
}

// Load 从 gdata 加载成长数据
// 管理器为 nil 或数据不存在时使用默认数据
func (ps *ProgressionStore) Load() error {
	if ps.gdataManager == nil {
		return nil
	}
	if !ps.gdataManager.ObjectPropExists(progressionObject, progressionProperty) {
		ps.progression = ps.defaultProgression()
		return nil
	}

	data, err := ps.gdataManager.LoadObjectProp(progressionObject, progressionProperty)
	if err != nil {
		ps.progression = ps.defaultProgression()
		return fmt.Errorf("failed to load progression: %w", err)
	}

	var loaded PlayerProgression
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		ps.progression = ps.defaultProgression()
		return fmt.Errorf("failed to unmarshal progression: %w", err)
	}

	ps.progression = &loaded
	ps.sanitize()
	logger.Log.WithFields(logrus.Fields{
		"level":    loaded.Level,
		"unlocked": len(loaded.UnlockedModifiers),
	}).Debug("[ProgressionStore] Progression loaded")
	return nil
}

// Save 保存成长数据到 gdata
// 管理器为 nil 时不做任何事
func (ps *ProgressionStore) Save() error {
	if ps.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(ps.progression)
	if err != nil {
		return fmt.Errorf("failed to marshal progression: %w", err)
	}
	if err := ps.gdataManager.SaveObjectProp(progressionObject, progressionProperty, data); err != nil {
		return fmt.Errorf("failed to save progression: %w", err)
	}
	return nil
}

// Progression 返回当前成长数据
func (ps *ProgressionStore) Progression() *PlayerProgression {
	return ps.progression
}

// IsUnlocked 判断修正是否已解锁（接受旧 ID）
func (ps *ProgressionStore) IsUnlocked(modifierID int) bool {
	if mapped, ok := ps.modifiers.LegacyIDs[modifierID]; ok {
		modifierID = mapped
	}
	for _, id := range ps.progression.UnlockedModifiers {
		if id == modifierID {
			return true
		}
	}
	return false
}

// AddXP 增加经验，处理连续升级并同步等级解锁
func (ps *ProgressionStore) AddXP(amount int) ProgressResult {
	if amount < 0 {
		amount = 0
	}
	p := ps.progression
	p.XP += amount

	res := ProgressResult{XPGained: amount}
	for p.XP >= XPToNext(p.Level) {
		p.XP -= XPToNext(p.Level)
		p.Level++
		res.LevelsGained++
	}
	res.NewlyUnlocked = ps.syncUnlocks()

	if res.LevelsGained > 0 {
		logger.Log.WithFields(logrus.Fields{
			"level":    p.Level,
			"unlocked": res.NewlyUnlocked,
		}).Info("[ProgressionStore] Level up")
	}
	return res
}

// RecordRun 结算一局：记录对局并按结果发放经验
func (ps *ProgressionStore) RecordRun(record RunRecord) ProgressResult {
	record.XP = RunXP(record.WavesCleared, record.BossKills, record.Won)
	res := ps.AddXP(record.XP)

	runs := append(ps.progression.RecentRuns, record)
	if len(runs) > maxRunHistory {
		runs = runs[len(runs)-maxRunHistory:]
	}
	ps.progression.RecentRuns = runs
	return res
}

// sanitize 修正非法数值、映射旧 ID、去重，并补齐等级解锁
func (ps *ProgressionStore) sanitize() {
	p := ps.progression
	if p.Level < 1 {
		p.Level = 1
	}
	if p.XP < 0 {
		p.XP = 0
	}

	seen := make(map[int]bool, len(p.UnlockedModifiers))
	clean := make([]int, 0, len(p.UnlockedModifiers))
	for _, id := range p.UnlockedModifiers {
		if mapped, ok := ps.modifiers.LegacyIDs[id]; ok {
			id = mapped
		}
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		clean = append(clean, id)
	}
	if len(clean) == 0 {
		clean = append(clean, ps.modifiers.DefaultUnlocked...)
	}
	p.UnlockedModifiers = clean
	ps.syncUnlocks()
}

// syncUnlocks 按当前等级补齐解锁，返回新解锁的修正 ID
func (ps *ProgressionStore) syncUnlocks() []int {
	p := ps.progression
	unlocked := make(map[int]bool, len(p.UnlockedModifiers))
	for _, id := range p.UnlockedModifiers {
		unlocked[id] = true
	}

	var gained []int
	for _, level := range ps.modifiers.UnlockLevels() {
		id := ps.modifiers.UnlockByLevel[level]
		if p.Level >= level && !unlocked[id] {
			unlocked[id] = true
			gained = append(gained, id)
		}
	}

	ids := make([]int, 0, len(unlocked))
	for id := range unlocked {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	p.UnlockedModifiers = ids
	return gained
}
