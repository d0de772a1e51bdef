package components

import "github.com/gonewx/mazetd/pkg/maze"

// LaneStateComponent 路线状态组件
//
// 用于平滑权重路线分配算法，存储每条路线的入口、权重和选取历史
type LaneStateComponent struct {
	LaneIndex        int        // 路线编号（从 0 开始，与生成顺序一致）
	Entry            maze.Point // 路线入口格
	Weight           float64    // 路线权重
	LastPicked       int        // 距离上次被选取的计数器
	SecondLastPicked int        // 距离上上次被选取的计数器
}
