package types

// TowerType 防御塔类型
type TowerType string

const (
	TowerPhysical    TowerType = "physical"    // 箭塔：物理伤害
	TowerMagic       TowerType = "magic"       // 魔法塔：魔法伤害
	TowerIce         TowerType = "ice"         // 冰塔：持续冰冻激光
	TowerExecutioner TowerType = "executioner" // 处刑塔：标记与贯穿
)

// AllTowerTypes 所有防御塔类型
var AllTowerTypes = []TowerType{TowerPhysical, TowerMagic, TowerIce, TowerExecutioner}

// DamageType 返回该塔的基础伤害类型
func (t TowerType) DamageType() DamageType {
	switch t {
	case TowerMagic, TowerIce:
		return DamageMagic
	default:
		return DamagePhysical
	}
}

// TrapType 陷阱类型
type TrapType string

const (
	TrapFire   TrapType = "fire"   // 火焰陷阱：持续范围伤害
	TrapSpikes TrapType = "spikes" // 尖刺陷阱：周期性单格伤害
)

// AllTrapTypes 所有陷阱类型
var AllTrapTypes = []TrapType{TrapFire, TrapSpikes}

// StructureKind 建筑大类
type StructureKind int

const (
	StructureTower StructureKind = iota
	StructureTrap
	StructureSentinel
)

// String 返回建筑大类名称
func (k StructureKind) String() string {
	switch k {
	case StructureTower:
		return "tower"
	case StructureTrap:
		return "trap"
	case StructureSentinel:
		return "sentinel"
	default:
		return "unknown"
	}
}

// UpgradePath 升级路线编号（1 或 2）
type UpgradePath int

const (
	Path1 UpgradePath = 1
	Path2 UpgradePath = 2
)

// MaxUpgradeTier 每条升级路线的最大等级
const MaxUpgradeTier = 2
