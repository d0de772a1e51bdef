package game

import (
	"errors"
	"fmt"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/entities"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/systems"
	"github.com/gonewx/mazetd/pkg/types"
	"github.com/sirupsen/logrus"
)

// 建造、升级、出售命令的错误
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidPlacement   = errors.New("invalid placement")
	ErrAlreadySold        = errors.New("structure already sold")
	ErrUpgradeUnavailable = errors.New("upgrade unavailable")
	ErrUnknownStructure   = errors.New("unknown structure")
	ErrRunOver            = errors.New("run is over")
)

// BuildTower 在地面格上建造防御塔
//
// 返回：
//   - ecs.EntityID: 新防御塔
//   - error: 类型未知、位置非法或金币不足
func (s *Simulation) BuildTower(towerType types.TowerType, tile maze.Point) (ecs.EntityID, error) {
	if s.State.IsOver() {
		return 0, ErrRunOver
	}
	if _, ok := s.structCfg.GetTowerStats(towerType); !ok {
		return 0, fmt.Errorf("%w: tower %q", ErrUnknownStructure, towerType)
	}
	if !systems.CanPlaceTower(s.em, s.grid, tile, s.tileSize) {
		return 0, fmt.Errorf("%w: tower at %v", ErrInvalidPlacement, tile)
	}

	cost := s.State.TowerBuildCost(s.structCfg.TowerCost(towerType))
	if !s.State.SpendMoney(cost) {
		return 0, fmt.Errorf("%w: %s tower costs %d, have %d", ErrInsufficientFunds, towerType, cost, s.State.Money)
	}
	id, err := entities.NewTowerEntity(s.em, s.structCfg, towerType, tile, s.tileSize, cost)
	if err != nil {
		s.State.AddMoney(cost)
		return 0, fmt.Errorf("failed to build tower: %w", err)
	}
	s.State.markTowerBuilt()

	logger.Log.WithFields(logrus.Fields{
		"type": towerType,
		"tile": tile,
		"cost": cost,
	}).Debug("[Simulation] Tower built")
	return id, nil
}

// BuildTrap 在路径格上建造陷阱
func (s *Simulation) BuildTrap(trapType types.TrapType, tile maze.Point) (ecs.EntityID, error) {
	if s.State.IsOver() {
		return 0, ErrRunOver
	}
	if _, ok := s.structCfg.GetTrapStats(trapType); !ok {
		return 0, fmt.Errorf("%w: trap %q", ErrUnknownStructure, trapType)
	}
	if !systems.CanPlaceTrap(s.em, s.grid, tile, s.tileSize) {
		return 0, fmt.Errorf("%w: trap at %v", ErrInvalidPlacement, tile)
	}

	cost := s.structCfg.TrapCost(trapType)
	if !s.State.SpendMoney(cost) {
		return 0, fmt.Errorf("%w: %s trap costs %d, have %d", ErrInsufficientFunds, trapType, cost, s.State.Money)
	}
	id, err := entities.NewTrapEntity(s.em, s.structCfg, trapType, tile, s.tileSize, cost)
	if err != nil {
		s.State.AddMoney(cost)
		return 0, fmt.Errorf("failed to build trap: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"type": trapType,
		"tile": tile,
		"cost": cost,
	}).Debug("[Simulation] Trap built")
	return id, nil
}

// BuildSentinel 在地面格上建造哨兵
func (s *Simulation) BuildSentinel(tile maze.Point) (ecs.EntityID, error) {
	if s.State.IsOver() {
		return 0, ErrRunOver
	}
	if !systems.CanPlaceSentinel(s.em, s.grid, tile, s.tileSize) {
		return 0, fmt.Errorf("%w: sentinel at %v", ErrInvalidPlacement, tile)
	}

	cost := s.structCfg.Sentinel.Cost
	if !s.State.SpendMoney(cost) {
		return 0, fmt.Errorf("%w: sentinel costs %d, have %d", ErrInsufficientFunds, cost, s.State.Money)
	}
	id := entities.NewSentinelEntity(s.em, s.structCfg, tile, s.tileSize, cost)

	logger.Log.WithFields(logrus.Fields{
		"tile": tile,
		"cost": cost,
	}).Debug("[Simulation] Sentinel built")
	return id, nil
}

// upgradeState 返回建筑的升级记录，建筑不存在或已删除时返回错误
func (s *Simulation) upgradeState(id ecs.EntityID) (*components.UpgradeComponent, error) {
	if !s.em.Exists(id) || !ecs.HasComponent[*components.StructureComponent](s.em, id) {
		return nil, fmt.Errorf("%w: entity %d", ErrUnknownStructure, id)
	}
	up, ok := ecs.GetComponent[*components.UpgradeComponent](s.em, id)
	if !ok {
		return nil, fmt.Errorf("%w: entity %d", ErrUnknownStructure, id)
	}
	if up.Sold || s.em.IsPendingDestroy(id) {
		return nil, fmt.Errorf("%w: entity %d", ErrAlreadySold, id)
	}
	return up, nil
}

// NextUpgrade 返回建筑在指定路线上的下一级升级
func (s *Simulation) NextUpgrade(id ecs.EntityID, path types.UpgradePath) (config.UpgradeTier, error) {
	if _, err := s.upgradeState(id); err != nil {
		return config.UpgradeTier{}, err
	}
	tier, ok := systems.NextUpgrade(s.em, id, s.structCfg, path)
	if !ok {
		return config.UpgradeTier{}, fmt.Errorf("%w: entity %d path %d", ErrUpgradeUnavailable, id, path)
	}
	return tier, nil
}

// Upgrade 支付并应用建筑的下一级升级
//
// 返回：
//   - config.UpgradeTier: 本次应用的升级
//   - error: 建筑无效、已出售、路线锁定或满级、金币不足
func (s *Simulation) Upgrade(id ecs.EntityID, path types.UpgradePath) (config.UpgradeTier, error) {
	if s.State.IsOver() {
		return config.UpgradeTier{}, ErrRunOver
	}
	tier, err := s.NextUpgrade(id, path)
	if err != nil {
		return config.UpgradeTier{}, err
	}
	if !s.State.SpendMoney(tier.Cost) {
		return config.UpgradeTier{}, fmt.Errorf("%w: %s costs %d, have %d", ErrInsufficientFunds, tier.Name, tier.Cost, s.State.Money)
	}
	if !systems.ApplyUpgrade(s.em, id, s.structCfg, path, tier.Cost) {
		s.State.AddMoney(tier.Cost)
		return config.UpgradeTier{}, fmt.Errorf("%w: entity %d path %d", ErrUpgradeUnavailable, id, path)
	}
	return tier, nil
}

// SellValueOf 返回建筑当前的出售价格
func (s *Simulation) SellValueOf(id ecs.EntityID) (int, error) {
	up, err := s.upgradeState(id)
	if err != nil {
		return 0, err
	}
	return SellValue(up.BuildCost, up.UpgradeSpent, s.State.Effects.SellRefundRate), nil
}

// Sell 出售建筑：立即停止工作并返还金币
// 同一建筑只能出售一次
func (s *Simulation) Sell(id ecs.EntityID) (int, error) {
	if s.State.IsOver() {
		return 0, ErrRunOver
	}
	value, err := s.SellValueOf(id)
	if err != nil {
		return 0, err
	}
	s.removeStructure(id)
	s.State.AddMoney(value)

	logger.Log.WithFields(logrus.Fields{
		"structure": id,
		"refund":    value,
	}).Debug("[Simulation] Structure sold")
	return value, nil
}

// CycleTargeting 切换防御塔的索敌模式
func (s *Simulation) CycleTargeting(id ecs.EntityID) (types.TargetingMode, error) {
	if _, err := s.upgradeState(id); err != nil {
		return "", err
	}
	tower, ok := ecs.GetComponent[*components.TowerComponent](s.em, id)
	if !ok {
		return "", fmt.Errorf("%w: entity %d is not a tower", ErrUnknownStructure, id)
	}
	tower.Targeting = tower.Targeting.Next()
	return tower.Targeting, nil
}

// StructureAt 返回占据指定格的建筑
func (s *Simulation) StructureAt(tile maze.Point) (ecs.EntityID, bool) {
	for _, id := range ecs.GetEntitiesWith1[*components.StructureComponent](s.em) {
		if s.em.IsPendingDestroy(id) {
			continue
		}
		st, _ := ecs.GetComponent[*components.StructureComponent](s.em, id)
		if st.Tile == tile {
			return id, true
		}
	}
	return 0, false
}

// BuildCost 返回建造指定建筑的当前价格（含快速部署折扣）
// kind 为防御塔类型、陷阱类型或 "sentinel"
func (s *Simulation) BuildCost(kind string) (int, bool) {
	if kind == types.StructureSentinel.String() {
		return s.structCfg.Sentinel.Cost, true
	}
	if _, ok := s.structCfg.GetTowerStats(types.TowerType(kind)); ok {
		return s.State.TowerBuildCost(s.structCfg.TowerCost(types.TowerType(kind))), true
	}
	if _, ok := s.structCfg.GetTrapStats(types.TrapType(kind)); ok {
		return s.structCfg.TrapCost(types.TrapType(kind)), true
	}
	return 0, false
}
