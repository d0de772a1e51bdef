package systems

import (
	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/types"
)

// 激光接触与冰冻脉冲施加的减速层数
const (
	laserInitialSlow = 2.0
	laserPulseSlow   = 10.0
)

// IceLaser 冰塔与目标之间的持续激光
type IceLaser struct {
	TowerID        ecs.EntityID
	TargetID       ecs.EntityID
	FreezeDelay    float64
	TimeOnTarget   float64
	InitialApplied bool
}

// LaserSet 所有冰塔的激光，按塔的首次锁定顺序保存
type LaserSet struct {
	byTower map[ecs.EntityID][]*IceLaser
	order   []ecs.EntityID
}

// NewLaserSet 创建空激光集合
func NewLaserSet() *LaserSet {
	return &LaserSet{byTower: make(map[ecs.EntityID][]*IceLaser)}
}

// Sync 把塔的激光同步为指定目标列表
// 已有目标的激光保留累计时间，离开列表的目标断开
//
// 返回：
//   - []*IceLaser: 本次新建的激光
func (ls *LaserSet) Sync(towerID ecs.EntityID, freezeDelay float64, targets []ecs.EntityID) []*IceLaser {
	old, known := ls.byTower[towerID]
	if !known && len(targets) == 0 {
		return nil
	}
	if !known {
		ls.order = append(ls.order, towerID)
	}

	kept := make([]*IceLaser, 0, len(targets))
	var created []*IceLaser
	for _, target := range targets {
		var laser *IceLaser
		for _, l := range old {
			if l.TargetID == target {
				laser = l
				break
			}
		}
		if laser == nil {
			laser = &IceLaser{TowerID: towerID, TargetID: target, FreezeDelay: freezeDelay}
			created = append(created, laser)
		}
		laser.FreezeDelay = freezeDelay
		kept = append(kept, laser)
	}
	ls.byTower[towerID] = kept
	return created
}

// Drop 断开塔的所有激光
func (ls *LaserSet) Drop(towerID ecs.EntityID) {
	if _, ok := ls.byTower[towerID]; !ok {
		return
	}
	delete(ls.byTower, towerID)
	kept := ls.order[:0]
	for _, id := range ls.order {
		if id != towerID {
			kept = append(kept, id)
		}
	}
	ls.order = kept
}

// All 按确定顺序返回所有激光
func (ls *LaserSet) All() []*IceLaser {
	out := make([]*IceLaser, 0, len(ls.order))
	for _, tid := range ls.order {
		out = append(out, ls.byTower[tid]...)
	}
	return out
}

// Count 返回激光数量
func (ls *LaserSet) Count() int {
	n := 0
	for _, l := range ls.byTower {
		n += len(l)
	}
	return n
}

// Update 推进所有激光
// 目标死亡、离开射程，或塔被出售、眩晕时激光断开
func (ls *LaserSet) Update(bf *Battlefield, dt float64) {
	for _, tid := range append([]ecs.EntityID(nil), ls.order...) {
		lasers := ls.byTower[tid]
		kept := lasers[:0]
		for _, laser := range lasers {
			if ls.step(bf, laser, dt) {
				kept = append(kept, laser)
			}
		}
		if len(kept) == 0 {
			ls.Drop(tid)
			continue
		}
		ls.byTower[tid] = kept
	}
}

func (ls *LaserSet) step(bf *Battlefield, laser *IceLaser, dt float64) bool {
	em := bf.EM
	if !IsAlive(em, laser.TargetID) || !em.Exists(laser.TowerID) || em.IsPendingDestroy(laser.TowerID) {
		return false
	}
	tower, ok := ecs.GetComponent[*components.TowerComponent](em, laser.TowerID)
	if !ok || tower.StunTimer > 0 {
		return false
	}
	if up, ok := ecs.GetComponent[*components.UpgradeComponent](em, laser.TowerID); ok && up.Sold {
		return false
	}
	tpos, _ := ecs.GetComponent[*components.PositionComponent](em, laser.TowerID)
	epos, _ := ecs.GetComponent[*components.PositionComponent](em, laser.TargetID)
	if !InRange(tpos.X, tpos.Y, epos.X, epos.Y, EffectiveRange(tower, bf.Effects)) {
		return false
	}
	st, ok := ecs.GetComponent[*components.StatusComponent](em, laser.TargetID)
	if !ok {
		return false
	}

	if !laser.InitialApplied {
		bf.Status.AddSlow(st, laserInitialSlow)
		laser.InitialApplied = true
	}

	laser.TimeOnTarget += dt
	if laser.TimeOnTarget >= laser.FreezeDelay {
		laser.TimeOnTarget = 0
		if damage := EffectiveDamage(tower, bf.Effects); damage > 0 {
			bf.Damage.TakeDamage(laser.TargetID, Hit{
				Amount: damage * ShatterMultiplier(st, tower.ShatterBonus),
				Type:   tower.DamageType,
				Source: types.SourceProjectile,
			})
		}
		bf.Status.AddSlow(st, laserPulseSlow)
	}
	return true
}

// ShatterMultiplier 碎冰加成：冰冻目标吃满加成，减速目标吃一半
func ShatterMultiplier(st *components.StatusComponent, bonus float64) float64 {
	if bonus <= 0 || st == nil {
		return 1.0
	}
	if st.Active(types.EffectFrozen) {
		return 1 + bonus
	}
	if st.SlowStacks > 0 {
		return 1 + bonus*0.5
	}
	return 1.0
}
