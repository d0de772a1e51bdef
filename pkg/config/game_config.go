package config

import (
	"fmt"

	"github.com/gonewx/mazetd/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// GameConfig 地图与对局基础配置
type GameConfig struct {
	TileSize         int       `yaml:"tileSize"`         // 格子边长（像素）
	GridWidth        int       `yaml:"gridWidth"`        // 地图宽（格）
	GridHeight       int       `yaml:"gridHeight"`       // 地图高（格）
	InitialLanesMin  int       `yaml:"initialLanesMin"`  // 初始路线数下限
	InitialLanesMax  int       `yaml:"initialLanesMax"`  // 初始路线数上限
	MaxLanes         int       `yaml:"maxLanes"`         // 路线总数上限
	MinLaneSpacing   int       `yaml:"minLaneSpacing"`   // 路线入口之间最小曼哈顿距离
	LaneAttempts     int       `yaml:"laneAttempts"`     // 每个区域随机尝试次数
	StartMoney       int       `yaml:"startMoney"`       // 初始金币
	StartLives       int       `yaml:"startLives"`       // 初始生命
	TargetWave       int       `yaml:"targetWave"`       // 默认目标波次
	SpatialCellSize  float64   `yaml:"spatialCellSize"`  // 空间索引单元大小（像素）
	SpeedMultipliers []float64 `yaml:"speedMultipliers"` // 可选的模拟速度倍率
	WaveIntermission float64   `yaml:"waveIntermission"` // 清空一波后到下一波开始的间隔（秒）
}

// LoadGameConfig 从 YAML 文件加载对局配置
func LoadGameConfig(filepath string) (*GameConfig, error) {
	data, err := embedded.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config file %s: %w", filepath, err)
	}

	config := DefaultGameConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse game config YAML from %s: %w", filepath, err)
	}

	if err := validateGameConfig(config); err != nil {
		return nil, fmt.Errorf("invalid game config in %s: %w", filepath, err)
	}

	return config, nil
}

// validateGameConfig 验证对局配置
func validateGameConfig(config *GameConfig) error {
	if config.TileSize <= 0 {
		return fmt.Errorf("tileSize must be positive, got %d", config.TileSize)
	}
	if config.GridWidth < 8 || config.GridHeight < 8 {
		return fmt.Errorf("grid must be at least 8x8, got %dx%d", config.GridWidth, config.GridHeight)
	}
	if config.InitialLanesMin < 1 || config.InitialLanesMax < config.InitialLanesMin {
		return fmt.Errorf("invalid initial lane range [%d, %d]", config.InitialLanesMin, config.InitialLanesMax)
	}
	if config.MaxLanes < config.InitialLanesMax {
		return fmt.Errorf("maxLanes (%d) must be >= initialLanesMax (%d)", config.MaxLanes, config.InitialLanesMax)
	}
	if config.MinLaneSpacing < 0 {
		return fmt.Errorf("minLaneSpacing cannot be negative, got %d", config.MinLaneSpacing)
	}
	if config.StartLives <= 0 {
		return fmt.Errorf("startLives must be positive, got %d", config.StartLives)
	}
	if config.SpatialCellSize <= 0 {
		return fmt.Errorf("spatialCellSize must be positive, got %.2f", config.SpatialCellSize)
	}
	if len(config.SpeedMultipliers) == 0 {
		return fmt.Errorf("at least one speed multiplier is required")
	}
	if config.WaveIntermission < 0 {
		return fmt.Errorf("waveIntermission cannot be negative, got %.2f", config.WaveIntermission)
	}
	for _, m := range config.SpeedMultipliers {
		if m <= 0 {
			return fmt.Errorf("speed multipliers must be positive, got %.2f", m)
		}
	}
	return nil
}

// GoalTile 返回终点所在格（地图中心）
func (c *GameConfig) GoalTile() (int, int) {
	return c.GridWidth / 2, c.GridHeight / 2
}

// DefaultGameConfig 返回内置的对局配置
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		TileSize:         20,
		GridWidth:        40,
		GridHeight:       40,
		InitialLanesMin:  3,
		InitialLanesMax:  4,
		MaxLanes:         8,
		MinLaneSpacing:   10,
		LaneAttempts:     30,
		StartMoney:       300,
		StartLives:       25,
		TargetWave:       30,
		SpatialCellSize:  40,
		SpeedMultipliers: []float64{1, 2, 3},
		WaveIntermission: 3,
	}
}
