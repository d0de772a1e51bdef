// Package types 定义共享的基础类型
package types

// EnemyType 定义敌人的类型
// 使用字符串底层类型，直接对应 YAML 配置中的键名
type EnemyType string

const (
	EnemyFighter  EnemyType = "fighter"  // 战士：半血时获得护盾
	EnemyTank     EnemyType = "tank"     // 坦克：低血时抗性翻倍
	EnemyMage     EnemyType = "mage"     // 法师：可格挡投射物
	EnemyAssassin EnemyType = "assassin" // 刺客：闪避，低血时瞬移或加速
	EnemyHealer   EnemyType = "healer"   // 治疗者：周期性链式治疗
	EnemySwarm    EnemyType = "swarm"    // 虫群：成批生成的小型单位

	// Boss
	EnemyMinotaurBoss EnemyType = "minotaur_boss" // 牛头怪：眩晕脉冲与二阶段狂暴
	EnemyDemonBoss    EnemyType = "demon_boss"    // 恶魔：换路、召唤护卫、瞬移
)

// AllEnemyTypes 所有敌人类型（固定顺序，用于遍历和校验）
var AllEnemyTypes = []EnemyType{
	EnemyFighter,
	EnemyTank,
	EnemyMage,
	EnemyAssassin,
	EnemyHealer,
	EnemySwarm,
	EnemyMinotaurBoss,
	EnemyDemonBoss,
}

// IsBoss 判断是否为 Boss 类型
func (t EnemyType) IsBoss() bool {
	return t == EnemyMinotaurBoss || t == EnemyDemonBoss
}

// IsValid 判断是否为已知的敌人类型
func (t EnemyType) IsValid() bool {
	for _, known := range AllEnemyTypes {
		if known == t {
			return true
		}
	}
	return false
}
