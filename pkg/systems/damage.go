package systems

import (
	"math/rand"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/types"
)

// Hit 一次伤害请求
type Hit struct {
	Amount float64
	Type   types.DamageType
	Source types.DamageSource

	// ResistOverride 非空时替代目标抗性（穿甲）
	ResistOverride float64
	HasOverride    bool

	// Continuous 按帧结算的持续伤害（光环、反伤、DoT），不触发闪避
	Continuous bool
}

// DamageResolver 伤害结算
//
// 顺序：法师格挡 → 刺客闪避 → 抗性 → 易伤 → 护盾 → 生命
type DamageResolver struct {
	em        *ecs.EntityManager
	rng       *rand.Rand
	abilities config.AbilityConfig
}

// NewDamageResolver 创建伤害结算器
func NewDamageResolver(em *ecs.EntityManager, rng *rand.Rand, abilities config.AbilityConfig) *DamageResolver {
	return &DamageResolver{em: em, rng: rng, abilities: abilities}
}

// TakeDamage 对敌人结算一次伤害
//
// 返回：
//   - bool: 伤害是否真正生效（被格挡/闪避或目标已失效时为 false）
func (dr *DamageResolver) TakeDamage(id ecs.EntityID, hit Hit) bool {
	if hit.Amount <= 0 || !IsAlive(dr.em, id) {
		return false
	}
	health, _ := ecs.GetComponent[*components.HealthComponent](dr.em, id)

	if hit.Source == types.SourceProjectile {
		if mage, ok := ecs.GetComponent[*components.MageAbilityComponent](dr.em, id); ok && mage.BlockCharges > 0 {
			mage.BlockCharges--
			return false
		}
	}

	if hit.Source != types.SourceStatus && !hit.Continuous {
		if assassin, ok := ecs.GetComponent[*components.AssassinAbilityComponent](dr.em, id); ok {
			chance := assassin.DodgeChance(dr.abilities.AssassinDodgeDecay, dr.abilities.AssassinDodgeFloor)
			if dr.rng.Float64() < chance {
				assassin.DodgeStreak++
				return false
			}
		}
	}

	resist := 0.0
	if hit.HasOverride {
		resist = hit.ResistOverride
	} else if r, ok := ecs.GetComponent[*components.ResistComponent](dr.em, id); ok {
		resist = r.For(hit.Type)
	}

	mult := 1.0
	if st, ok := ecs.GetComponent[*components.StatusComponent](dr.em, id); ok {
		mult = st.DamageTakenMult
	}

	effective := hit.Amount * (1 - resist) * mult
	if effective <= 0 {
		return false
	}

	if health.Shield > 0 {
		absorbed := health.Shield
		if absorbed > effective {
			absorbed = effective
		}
		health.Shield -= absorbed
		effective -= absorbed
	}
	health.Current -= effective
	return true
}

// IsAlive 判断敌人是否仍参与战斗
func IsAlive(em *ecs.EntityManager, id ecs.EntityID) bool {
	if !em.Exists(id) || em.IsPendingDestroy(id) {
		return false
	}
	health, ok := ecs.GetComponent[*components.HealthComponent](em, id)
	if !ok || health.Current <= 0 {
		return false
	}
	enemy, ok := ecs.GetComponent[*components.EnemyComponent](em, id)
	if !ok {
		return false
	}
	return !enemy.Arrived && !enemy.Stuck
}

// LiveEnemies 按创建顺序返回仍存活的敌人
func LiveEnemies(em *ecs.EntityManager) []ecs.EntityID {
	ids := ecs.GetEntitiesWith2[*components.EnemyComponent, *components.HealthComponent](em)
	alive := ids[:0]
	for _, id := range ids {
		if IsAlive(em, id) {
			alive = append(alive, id)
		}
	}
	return alive
}
