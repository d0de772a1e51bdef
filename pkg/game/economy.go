package game

import (
	"math"

	"github.com/gonewx/mazetd/pkg/config"
)

// 利息档位
const (
	interestLowCeiling  = 500
	interestMidCeiling  = 1200
	interestLowRate     = 0.05
	interestMidRate     = 0.03
	interestHighRate    = 0.02
	interestBaseCap     = 150
	rapidDeploymentRate = 0.85

	// floorEpsilon 吸收乘法的浮点误差，如 170*0.7 = 118.99999999999999
	floorEpsilon = 1e-9
)

// floorInt 向下取整
func floorInt(v float64) int {
	return int(math.Floor(v + floorEpsilon))
}

// SellValue 计算出售返还金额
// 返还 (建造价格 + 累计升级花费) × 返还比例，向下取整
func SellValue(buildCost, upgradeSpent int, refundRate float64) int {
	total := buildCost + upgradeSpent
	if total <= 0 || refundRate <= 0 {
		return 0
	}
	return floorInt(float64(total) * refundRate)
}

// CalculateInterest 计算波次开始时的利息
//
// 档位：≤500 为 5%，≤1200 为 3%，其余 2%；乘以利息倍率后
// 封顶 150 + 修正提供的上限加成
func CalculateInterest(money int, effects config.RunEffects) int {
	if money <= 0 {
		return 0
	}
	rate := interestHighRate
	switch {
	case money <= interestLowCeiling:
		rate = interestLowRate
	case money <= interestMidCeiling:
		rate = interestMidRate
	}

	interest := floorInt(float64(money) * rate * effects.InterestMult)
	limit := interestBaseCap + effects.InterestCapBonus
	if interest > limit {
		interest = limit
	}
	if interest < 0 {
		return 0
	}
	return interest
}

// TowerBuildCost 返回当前建造防御塔的实际价格
// 快速部署修正使每波第一座防御塔便宜 15%
func (gs *GameState) TowerBuildCost(base int) int {
	if gs.Effects.RapidDeployment && !gs.deployDiscountUsed {
		return floorInt(float64(base) * rapidDeploymentRate)
	}
	return base
}

// markTowerBuilt 记录本波已建造防御塔（折扣用尽）
func (gs *GameState) markTowerBuilt() {
	gs.deployDiscountUsed = true
}

// startWave 进入新的一波：第一波之后的每波开始时结算利息
//
// 返回：
//   - int: 本次结算的利息
func (gs *GameState) startWave(wave int) int {
	gs.Wave = wave
	gs.deployDiscountUsed = false
	if wave <= 1 {
		return 0
	}
	interest := CalculateInterest(gs.Money, gs.Effects)
	gs.Money += interest
	return interest
}
