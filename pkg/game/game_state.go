package game

import (
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/google/uuid"
)

// GameState 一局游戏的经济与进度状态
// 由 Simulation 持有，UI 只读
type GameState struct {
	RunID uuid.UUID // 本局唯一标识，用于日志与对局记录

	Money      int
	Lives      int
	Wave       int // 当前波次（第一波开始前为 0）
	TargetWave int // 清空该波即获胜
	Effects    config.RunEffects

	Kills        int
	BossKills    int
	WavesCleared int

	Won  bool
	Lost bool

	// 快速部署：本波第一座防御塔的折扣是否已使用
	deployDiscountUsed bool
}

// NewGameState 创建新一局的状态
//
// 参数：
//   - cfg: 对局配置（初始金币与生命）
//   - effects: 已编译的局内修正
//   - targetWave: 目标波次，不大于 0 时使用配置默认值
func NewGameState(cfg *config.GameConfig, effects config.RunEffects, targetWave int) *GameState {
	if targetWave <= 0 {
		targetWave = cfg.TargetWave
	}
	return &GameState{
		RunID:      uuid.New(),
		Money:      cfg.StartMoney + effects.StartGoldBonus,
		Lives:      cfg.StartLives,
		TargetWave: targetWave,
		Effects:    effects,
	}
}

// AddMoney 增加金币
func (gs *GameState) AddMoney(amount int) {
	if amount > 0 {
		gs.Money += amount
	}
}

// SpendMoney 扣除金币，如果金币不足返回 false
// 只有当金币充足时才会扣除
func (gs *GameState) SpendMoney(amount int) bool {
	if amount < 0 || gs.Money < amount {
		return false
	}
	gs.Money -= amount
	return true
}

// LoseLives 扣除生命，生命归零时标记失败
func (gs *GameState) LoseLives(n int) {
	if n <= 0 {
		return
	}
	gs.Lives -= n
	if gs.Lives <= 0 {
		gs.Lives = 0
		gs.Lost = true
	}
}

// IsOver 对局是否已结束
func (gs *GameState) IsOver() bool {
	return gs.Won || gs.Lost
}
