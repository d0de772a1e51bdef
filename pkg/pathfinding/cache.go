package pathfinding

import (
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/maze"
)

type cacheKey struct {
	epoch       uint64
	start, goal maze.Point
}

// PathCache 按地图版本号缓存寻路结果
// 地图发生变化（路线扩展）后调用 Invalidate，旧版本的结果不再命中
type PathCache struct {
	grid    *maze.Grid
	epoch   uint64
	entries map[cacheKey][]maze.Point

	hits   int
	misses int
}

// NewPathCache 创建路径缓存
func NewPathCache(grid *maze.Grid) *PathCache {
	return &PathCache{
		grid:    grid,
		entries: make(map[cacheKey][]maze.Point),
	}
}

// Get 返回 start 到 goal 的路线，未命中时计算并缓存
// 返回的切片由缓存共享，调用方不得修改
func (c *PathCache) Get(start, goal maze.Point) []maze.Point {
	key := cacheKey{epoch: c.epoch, start: start, goal: goal}
	if path, ok := c.entries[key]; ok {
		c.hits++
		return path
	}
	c.misses++
	path := FindPath(c.grid, start, goal)
	c.entries[key] = path
	return path
}

// Invalidate 提升地图版本号并丢弃所有旧结果
func (c *PathCache) Invalidate() {
	c.epoch++
	c.entries = make(map[cacheKey][]maze.Point)
	logger.Log.Debugf("[PathCache] Invalidated, epoch=%d (hits=%d misses=%d)", c.epoch, c.hits, c.misses)
}

// Epoch 返回当前地图版本号
func (c *PathCache) Epoch() uint64 {
	return c.epoch
}

// Stats 返回命中和未命中次数
func (c *PathCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}
