// Package maze 提供地图网格、路线生成与运行时路线扩展
package maze

import "github.com/gonewx/mazetd/pkg/types"

// Point 网格坐标（列, 行）
type Point struct {
	X, Y int
}

// Manhattan 返回两点间曼哈顿距离
func (p Point) Manhattan(o Point) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

// Chebyshev 返回两点间切比雪夫距离
func (p Point) Chebyshev(o Point) int {
	dx, dy := abs(p.X-o.X), abs(p.Y-o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Grid 地图网格
// 仅由地图生成和路线扩展修改
type Grid struct {
	Width  int
	Height int
	tiles  []types.Tile
}

// NewGrid 创建指定尺寸的网格，所有格子初始为墙体
func NewGrid(width, height int) *Grid {
	g := &Grid{
		Width:  width,
		Height: height,
		tiles:  make([]types.Tile, width*height),
	}
	for i := range g.tiles {
		g.tiles[i] = types.TileWall
	}
	return g
}

// InBounds 判断坐标是否在网格内
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// At 返回格子编码，越界视为墙体
func (g *Grid) At(p Point) types.Tile {
	if !g.InBounds(p) {
		return types.TileWall
	}
	return g.tiles[p.Y*g.Width+p.X]
}

// Set 设置格子编码，越界时忽略
func (g *Grid) Set(p Point, tile types.Tile) {
	if g.InBounds(p) {
		g.tiles[p.Y*g.Width+p.X] = tile
	}
}

// IsPath 判断格子是否为敌人可通行路径
func (g *Grid) IsPath(p Point) bool {
	return g.At(p) == types.TilePath
}

// Clone 深拷贝网格
func (g *Grid) Clone() *Grid {
	c := &Grid{Width: g.Width, Height: g.Height, tiles: make([]types.Tile, len(g.tiles))}
	copy(c.tiles, g.tiles)
	return c
}

// CountPath 返回路径格数量
func (g *Grid) CountPath() int {
	n := 0
	for _, t := range g.tiles {
		if t == types.TilePath {
			n++
		}
	}
	return n
}

// Neighbors4 四邻域偏移（左、右、上、下）
var Neighbors4 = [4]Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
