package game

import (
	"fmt"

	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// ViewerSettings 可视化界面的偏好设置
// 与玩家进度分开保存，不影响模拟结果
type ViewerSettings struct {
	SpeedIndex    int   `yaml:"speedIndex"`    // 开局时选择的速度档位
	Fullscreen    bool  `yaml:"fullscreen"`    // 启动时是否全屏
	LastModifiers []int `yaml:"lastModifiers"` // 上一局选择的修正，未指定修正时沿用
	ShowRanges    bool  `yaml:"showRanges"`    // 始终显示所有防御塔射程
}

// DefaultSettings 返回默认设置
func DefaultSettings() *ViewerSettings {
	return &ViewerSettings{}
}

// SettingsManager 设置管理器
// 负责界面设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式）
	settings     *ViewerSettings
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例，加载失败时使用默认设置
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}
	if err := sm.Load(); err != nil {
		logger.Log.WithError(err).Warn("[SettingsManager] Failed to load settings, using defaults")
	}
	return sm
}

// Load 从 gdata 加载设置
// gdataManager 为 nil 或设置不存在时使用默认设置
func (sm *SettingsManager) Load() error {
	sm.settings = DefaultSettings()
	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	var loaded ViewerSettings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if loaded.SpeedIndex < 0 {
		loaded.SpeedIndex = 0
	}

	sm.settings = &loaded
	logger.Log.Debug("[SettingsManager] Settings loaded")
	return nil
}

// Save 保存设置到 gdata
// gdataManager 为 nil 时直接返回 nil
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ViewerSettings {
	return sm.settings
}

// SetSpeedIndex 记录速度档位（仅修改内存，需调用 Save 持久化）
func (sm *SettingsManager) SetSpeedIndex(index int) {
	if index < 0 {
		index = 0
	}
	sm.settings.SpeedIndex = index
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// SetLastModifiers 记录本局选择的修正
func (sm *SettingsManager) SetLastModifiers(ids []int) {
	sm.settings.LastModifiers = append([]int(nil), ids...)
}

// ToggleShowRanges 切换射程显示，返回切换后的值
func (sm *SettingsManager) ToggleShowRanges() bool {
	sm.settings.ShowRanges = !sm.settings.ShowRanges
	return sm.settings.ShowRanges
}
