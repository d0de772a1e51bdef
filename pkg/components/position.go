package components

// PositionComponent 连续二维坐标（像素）
type PositionComponent struct {
	X float64
	Y float64
}
