package systems

import (
	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/types"
	"github.com/sirupsen/logrus"
)

// NextUpgrade 返回建筑在指定路线上的下一级升级信息
//
// 返回：
//   - config.UpgradeTier: 下一级的名称与价格
//   - bool: 路线已锁定、已满级或建筑无效时为 false
func NextUpgrade(em *ecs.EntityManager, id ecs.EntityID, cfg *config.StructureStatsConfig, path types.UpgradePath) (config.UpgradeTier, bool) {
	up, ok := ecs.GetComponent[*components.UpgradeComponent](em, id)
	if !ok || !up.CanUpgrade(path) {
		return config.UpgradeTier{}, false
	}
	paths, ok := upgradePathsFor(em, id, cfg)
	if !ok {
		return config.UpgradeTier{}, false
	}
	return paths.Tier(path, up.Level(path)+1)
}

func upgradePathsFor(em *ecs.EntityManager, id ecs.EntityID, cfg *config.StructureStatsConfig) (config.UpgradePaths, bool) {
	if tower, ok := ecs.GetComponent[*components.TowerComponent](em, id); ok {
		stats, ok := cfg.GetTowerStats(tower.Type)
		if !ok {
			return config.UpgradePaths{}, false
		}
		return stats.Upgrades, true
	}
	if trap, ok := ecs.GetComponent[*components.TrapComponent](em, id); ok {
		stats, ok := cfg.GetTrapStats(trap.Type)
		if !ok {
			return config.UpgradePaths{}, false
		}
		return stats.Upgrades, true
	}
	if ecs.HasComponent[*components.SentinelComponent](em, id) {
		return cfg.Sentinel.Upgrades, true
	}
	return config.UpgradePaths{}, false
}

// ApplyUpgrade 升级建筑的指定路线并应用该等级的效果
// 路线被锁定或已满级时不做任何修改并返回 false
//
// 参数：
//   - paid: 实际支付的升级价格，累加到升级花费中用于出售计算
func ApplyUpgrade(em *ecs.EntityManager, id ecs.EntityID, cfg *config.StructureStatsConfig, path types.UpgradePath, paid int) bool {
	tier, ok := NextUpgrade(em, id, cfg, path)
	if !ok {
		return false
	}
	up, _ := ecs.GetComponent[*components.UpgradeComponent](em, id)

	switch path {
	case types.Path1:
		up.Path1Level++
	case types.Path2:
		up.Path2Level++
	}
	level := up.Level(path)
	up.UpgradeSpent += paid

	if tower, ok := ecs.GetComponent[*components.TowerComponent](em, id); ok {
		ApplyTowerUpgrade(tower, path, level)
	} else if trap, ok := ecs.GetComponent[*components.TrapComponent](em, id); ok {
		ApplyTrapUpgrade(trap, path, level)
	} else if sentinel, ok := ecs.GetComponent[*components.SentinelComponent](em, id); ok {
		ApplySentinelUpgrade(sentinel, cfg.Sentinel, path, level)
	}

	logger.Log.WithFields(logrus.Fields{
		"structure": id,
		"path":      path,
		"level":     level,
		"name":      tier.Name,
		"paid":      paid,
	}).Debug("[Upgrade] Structure upgraded")
	return true
}

// ApplyTowerUpgrade 应用防御塔某条路线某一级的效果
func ApplyTowerUpgrade(t *components.TowerComponent, path types.UpgradePath, level int) {
	switch t.Type {
	case types.TowerPhysical:
		switch {
		case path == types.Path1 && level == 1:
			t.Range, t.Damage = 220, 24
		case path == types.Path1 && level == 2:
			t.ArmorPierce, t.Damage = 0.6, 32
		case path == types.Path2 && level == 1:
			t.ProjectileCount = 4
		case path == types.Path2 && level == 2:
			t.Bounces, t.BounceRadius = 1, 90
		}

	case types.TowerMagic:
		switch {
		case path == types.Path1 && level == 1:
			t.ChainCount = 3
		case path == types.Path1 && level == 2:
			t.ChainCount, t.StatusSpread = 4, true
		case path == types.Path2 && level == 1:
			t.AoERadius = 90
		case path == types.Path2 && level == 2:
			t.PullSpeed, t.AoERadius = 30, 120
		}

	case types.TowerIce:
		switch {
		case path == types.Path1 && level == 1:
			t.FreezeDelay = 0.45
		case path == types.Path1 && level == 2:
			t.Damage, t.ShatterBonus = 12, 0.7
		case path == types.Path2 && level == 1:
			t.SlowAoERate, t.MultiLaser = 6, true
		case path == types.Path2 && level == 2:
			t.SlowAoERate, t.MultiLaser, t.AbsoluteZero = 0, false, true
		}

	case types.TowerExecutioner:
		switch {
		case path == types.Path1 && level == 1:
			t.MarkStrength, t.MarkDuration = 0.25, 4
		case path == types.Path1 && level == 2:
			t.MarkStrength, t.ExecuteThreshold = 0.5, 0.15
		case path == types.Path2 && level == 1:
			t.RailPierce = 3
		case path == types.Path2 && level == 2:
			t.RailPierce, t.Damage = 6, 60
		}
	}
}

// ApplyTrapUpgrade 应用陷阱某条路线某一级的效果
func ApplyTrapUpgrade(t *components.TrapComponent, path types.UpgradePath, level int) {
	switch t.Type {
	case types.TrapFire:
		switch {
		case path == types.Path1 && level == 1:
			t.AuraRadius, t.DPS = 3, 45
		case path == types.Path1 && level == 2:
			t.Phoenix = true
		case path == types.Path2 && level == 1:
			t.BurnSpread = true
		case path == types.Path2 && level == 2:
			t.Detonate = true
		}

	case types.TrapSpikes:
		switch {
		case path == types.Path1 && level == 1:
			t.BleedDuration, t.Damage = 3, 65
		case path == types.Path1 && level == 2:
			t.ImpaleDuration = 2
		case path == types.Path2 && level == 1:
			t.ClusterFraction = 0.3
		case path == types.Path2 && level == 2:
			t.QuakeFraction = 0.5
		}
	}
}

// ApplySentinelUpgrade 应用哨兵某条路线某一级的效果
func ApplySentinelUpgrade(s *components.SentinelComponent, stats config.SentinelStats, path types.UpgradePath, level int) {
	switch {
	case path == types.Path1 && level == 1:
		s.Duration, s.Range = 8, 130
	case path == types.Path1 && level == 2:
		s.ReflectDPS = stats.ReflectDPS
	case path == types.Path2 && level == 1:
		s.PulseEnabled, s.Cooldown = true, 8
	case path == types.Path2 && level == 2:
		s.Overload = true
	}
}
