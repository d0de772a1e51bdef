package ecs

import "reflect"

// typeOf 返回泛型参数对应的 reflect.Type
func typeOf[T any]() reflect.Type {
	var zero T
	return reflect.TypeOf(zero)
}

// GetComponent 以类型安全的方式获取组件
//
// 用法:
//
//	pos, ok := ecs.GetComponent[*components.PositionComponent](em, id)
func GetComponent[T any](em *EntityManager, id EntityID) (T, bool) {
	var zero T
	compMap, exists := em.components[id]
	if !exists {
		return zero, false
	}
	comp, found := compMap[typeOf[T]()]
	if !found {
		return zero, false
	}
	typed, ok := comp.(T)
	return typed, ok
}

// AddComponent 以类型安全的方式添加组件
func AddComponent[T any](em *EntityManager, id EntityID, component T) {
	if compMap, exists := em.components[id]; exists {
		compMap[typeOf[T]()] = component
	}
}

// HasComponent 以类型安全的方式检查组件
func HasComponent[T any](em *EntityManager, id EntityID) bool {
	compMap, exists := em.components[id]
	if !exists {
		return false
	}
	_, found := compMap[typeOf[T]()]
	return found
}

// RemoveComponent 以类型安全的方式移除组件
func RemoveComponent[T any](em *EntityManager, id EntityID) {
	if compMap, exists := em.components[id]; exists {
		delete(compMap, typeOf[T]())
	}
}

// GetEntitiesWith1 查询拥有一个组件的实体
func GetEntitiesWith1[T1 any](em *EntityManager) []EntityID {
	t1 := typeOf[T1]()
	result := make([]EntityID, 0)
	for _, id := range em.order {
		if _, ok := em.components[id][t1]; ok {
			result = append(result, id)
		}
	}
	return result
}

// GetEntitiesWith2 查询同时拥有两个组件的实体
func GetEntitiesWith2[T1, T2 any](em *EntityManager) []EntityID {
	t1, t2 := typeOf[T1](), typeOf[T2]()
	result := make([]EntityID, 0)
	for _, id := range em.order {
		compMap := em.components[id]
		if _, ok := compMap[t1]; !ok {
			continue
		}
		if _, ok := compMap[t2]; !ok {
			continue
		}
		result = append(result, id)
	}
	return result
}

// GetEntitiesWith3 查询同时拥有三个组件的实体
func GetEntitiesWith3[T1, T2, T3 any](em *EntityManager) []EntityID {
	t1, t2, t3 := typeOf[T1](), typeOf[T2](), typeOf[T3]()
	result := make([]EntityID, 0)
	for _, id := range em.order {
		compMap := em.components[id]
		if _, ok := compMap[t1]; !ok {
			continue
		}
		if _, ok := compMap[t2]; !ok {
			continue
		}
		if _, ok := compMap[t3]; !ok {
			continue
		}
		result = append(result, id)
	}
	return result
}
