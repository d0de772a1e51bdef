// Package ecs 实现模拟所用的实体-组件存储
//
// 实体按创建顺序迭代，保证同一随机种子下每一帧的处理顺序一致。
// 删除是延迟的：DestroyEntity 只做标记，RemoveMarkedEntities 在帧末统一清理，
// 因此在一帧的战斗结算过程中不会有实体从集合中消失。
package ecs

import "reflect"

// EntityID 是实体的唯一标识符
type EntityID uint64

// InvalidEntity 无效实体 ID
const InvalidEntity EntityID = 0

// EntityManager 管理所有实体和组件
type EntityManager struct {
	nextID uint64
	// 实体-组件映射: EntityID -> ComponentType -> Component实例
	components map[EntityID]map[reflect.Type]interface{}
	// 按创建顺序排列的存活实体
	order []EntityID
	// 待删除的实体集合
	pendingDestroy map[EntityID]bool
	// 待删除的实体ID列表（保持标记顺序）
	entitiesToDestroy []EntityID
}

// NewEntityManager 创建一个新的 EntityManager 实例
func NewEntityManager() *EntityManager {
	return &EntityManager{
		nextID:            1, // ID从1开始,0保留为无效ID
		components:        make(map[EntityID]map[reflect.Type]interface{}),
		order:             make([]EntityID, 0, 64),
		pendingDestroy:    make(map[EntityID]bool),
		entitiesToDestroy: make([]EntityID, 0),
	}
}

// CreateEntity 创建新实体并返回唯一ID
func (em *EntityManager) CreateEntity() EntityID {
	id := EntityID(em.nextID)
	em.nextID++
	em.components[id] = make(map[reflect.Type]interface{})
	em.order = append(em.order, id)
	return id
}

// Exists 判断实体是否存在（已标记删除但未清理的实体仍然存在）
func (em *EntityManager) Exists(id EntityID) bool {
	_, ok := em.components[id]
	return ok
}

// IsPendingDestroy 判断实体是否已被标记删除
func (em *EntityManager) IsPendingDestroy(id EntityID) bool {
	return em.pendingDestroy[id]
}

// DestroyEntity 标记实体待删除(不立即删除)
// 重复标记同一实体是安全的
func (em *EntityManager) DestroyEntity(id EntityID) {
	if !em.Exists(id) || em.pendingDestroy[id] {
		return
	}
	em.pendingDestroy[id] = true
	em.entitiesToDestroy = append(em.entitiesToDestroy, id)
}

// AddComponent 为实体添加组件
func (em *EntityManager) AddComponent(id EntityID, component interface{}) {
	componentType := reflect.TypeOf(component)
	if compMap, exists := em.components[id]; exists {
		compMap[componentType] = component
	}
}

// RemoveComponent 从实体移除指定类型的组件
func (em *EntityManager) RemoveComponent(id EntityID, componentType reflect.Type) {
	if compMap, exists := em.components[id]; exists {
		delete(compMap, componentType)
	}
}

// GetComponent 获取实体的特定类型组件
func (em *EntityManager) GetComponent(id EntityID, componentType reflect.Type) (interface{}, bool) {
	if compMap, exists := em.components[id]; exists {
		if comp, found := compMap[componentType]; found {
			return comp, true
		}
	}
	return nil, false
}

// HasComponent 检查实体是否拥有特定类型组件
func (em *EntityManager) HasComponent(id EntityID, componentType reflect.Type) bool {
	if compMap, exists := em.components[id]; exists {
		_, found := compMap[componentType]
		return found
	}
	return false
}

// RemoveMarkedEntities 清理所有标记删除的实体
// 返回本次清理的实体数量
func (em *EntityManager) RemoveMarkedEntities() int {
	removed := len(em.entitiesToDestroy)
	if removed == 0 {
		return 0
	}

	for _, id := range em.entitiesToDestroy {
		delete(em.components, id)
	}

	// 原地压缩顺序列表
	kept := em.order[:0]
	for _, id := range em.order {
		if !em.pendingDestroy[id] {
			kept = append(kept, id)
		}
	}
	em.order = kept

	for _, id := range em.entitiesToDestroy {
		delete(em.pendingDestroy, id)
	}
	em.entitiesToDestroy = em.entitiesToDestroy[:0] // 清空切片
	return removed
}

// EntityCount 返回存活实体数量（包含已标记但未清理的实体）
func (em *EntityManager) EntityCount() int {
	return len(em.order)
}

// GetEntitiesWith 查询拥有指定组件类型组合的所有实体
// 参数: componentTypes ...reflect.Type - 需要的组件类型列表
// 返回: []EntityID - 满足条件的实体ID列表（按创建顺序）
func (em *EntityManager) GetEntitiesWith(componentTypes ...reflect.Type) []EntityID {
	result := make([]EntityID, 0)

	for _, id := range em.order {
		compMap := em.components[id]
		hasAll := true
		for _, ct := range componentTypes {
			if _, found := compMap[ct]; !found {
				hasAll = false
				break
			}
		}
		if hasAll {
			result = append(result, id)
		}
	}

	return result
}
