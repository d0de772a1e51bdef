// Package app 提供可视化对局的 ebiten 包装器
//
// 该包把模拟核心与输入、绘制连接起来：模拟本身不依赖 ebiten，
// 这里只负责把按键与鼠标转换成建造/升级/出售命令，并把实体画到屏幕上。
package app

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/game"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"
)

// sidebarWidth 右侧信息栏宽度（像素）
const sidebarWidth = 240

// Config 定义应用启动配置
type Config struct {
	// Seed 地图与波次随机种子
	Seed int64
	// TargetWave 目标波次，不大于 0 时使用配置默认值
	TargetWave int
	// Modifiers 本局选择的修正 ID（未解锁的会被忽略）
	Modifiers []int
	// Balance 平衡数据，为 nil 时使用内置默认值
	Balance *config.Balance
}

// buildKind 当前选中的建造类型
type buildKind struct {
	label    string
	costKey  string
	tower    types.TowerType
	trap     types.TrapType
	sentinel bool
}

// buildKinds 数字键 1~7 对应的建造类型
var buildKinds = []buildKind{
	{label: "Arrow", costKey: string(types.TowerPhysical), tower: types.TowerPhysical},
	{label: "Magic", costKey: string(types.TowerMagic), tower: types.TowerMagic},
	{label: "Ice", costKey: string(types.TowerIce), tower: types.TowerIce},
	{label: "Executioner", costKey: string(types.TowerExecutioner), tower: types.TowerExecutioner},
	{label: "Fire trap", costKey: string(types.TrapFire), trap: types.TrapFire},
	{label: "Spike trap", costKey: string(types.TrapSpikes), trap: types.TrapSpikes},
	{label: "Sentinel", costKey: "sentinel", sentinel: true},
}

var buildKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5, ebiten.Key6, ebiten.Key7,
}

// App 可视化对局，实现 ebiten.Game 接口
type App struct {
	cfg      Config
	store    *game.ProgressionStore
	settings *game.SettingsManager
	sim      *game.Simulation
	balance  *config.Balance
	selected int          // 选中的建造类型下标
	focus    ecs.EntityID // 选中的建筑，0 表示无
	message  string       // 最近一条命令反馈
	recorded bool         // 本局结果已写入进度

	pendingWindowSizeReset   bool
	windowSizeResetCountdown int
}

// NewApp 创建可视化对局
//
// 参数：
//
//	cfg - 启动配置
//	store - 玩家进度，用于筛选已解锁修正并在对局结束时记录结果，可为 nil
//	settings - 界面偏好，为 nil 时使用仅内存的默认设置
func NewApp(cfg Config, store *game.ProgressionStore, settings *game.SettingsManager) (*App, error) {
	if cfg.Balance == nil {
		cfg.Balance = config.DefaultBalance()
	}
	if cfg.Balance.Game.TileSize <= 0 {
		return nil, fmt.Errorf("invalid tile size %d", cfg.Balance.Game.TileSize)
	}

	if settings == nil {
		settings = game.NewSettingsManager(nil)
	}

	a := &App{
		cfg:      cfg,
		store:    store,
		settings: settings,
		balance:  cfg.Balance,
	}
	a.newRun()

	ebiten.SetWindowSize(a.Layout(0, 0))
	ebiten.SetFullscreen(settings.GetSettings().Fullscreen)
	return a, nil
}

// newRun 以当前配置开始新的一局
func (a *App) newRun() {
	mods := a.unlockedModifiers()
	b := a.balance
	a.sim = game.NewSimulation(game.Options{
		Seed:       a.cfg.Seed,
		TargetWave: a.cfg.TargetWave,
		Modifiers:  mods,
		Game:       b.Game,
		Enemies:    b.Enemies,
		Structures: b.Structures,
		Waves:      b.Waves,
		ModifierDB: b.Modifiers,
	})
	a.sim.SetSpeed(a.settings.GetSettings().SpeedIndex)
	a.settings.SetLastModifiers(mods)
	a.saveSettings()
	a.focus = 0
	a.recorded = false
	a.message = ""
}

// unlockedModifiers 过滤掉尚未解锁的修正
func (a *App) unlockedModifiers() []int {
	if a.store == nil {
		return a.cfg.Modifiers
	}
	var mods []int
	for _, id := range a.cfg.Modifiers {
		if !a.store.IsUnlocked(id) {
			logger.Log.Warnf("[App] Modifier %d is locked, ignoring", id)
			continue
		}
		mods = append(mods, id)
	}
	return mods
}

// Update 处理输入并推进模拟
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.Layout(0, 0))
			a.pendingWindowSizeReset = false
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		full := !ebiten.IsFullscreen()
		ebiten.SetFullscreen(full)
		if !full {
			// 退出全屏后等待几帧再恢复窗口大小
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
		}
		a.settings.SetFullscreen(full)
		a.saveSettings()
	}

	a.handleInput()

	a.sim.Tick(1.0 / 60.0)
	if a.sim.State.IsOver() && !a.recorded {
		a.recordRun()
	}
	return nil
}

// handleInput 把按键与点击转换为模拟命令
func (a *App) handleInput() {
	if a.sim.State.IsOver() {
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			a.cfg.Seed++
			a.newRun()
		}
		return
	}

	for i, key := range buildKeys {
		if inpututil.IsKeyJustPressed(key) {
			a.selected = i
			a.focus = 0
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.message = fmt.Sprintf("Speed x%.0f", a.sim.CycleSpeed())
		a.settings.SetSpeedIndex(a.sim.SpeedIndex())
		a.saveSettings()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		a.settings.ToggleShowRanges()
		a.saveSettings()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if a.sim.TogglePause() {
			a.message = "Paused"
		} else {
			a.message = "Resumed"
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		a.focus = 0
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if tile, ok := a.cursorTile(); ok {
			a.click(tile)
		}
	}

	if a.focus == 0 {
		return
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyU):
		a.upgrade(types.Path1)
	case inpututil.IsKeyJustPressed(ebiten.KeyI):
		a.upgrade(types.Path2)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		refund, err := a.sim.Sell(a.focus)
		a.report(err, fmt.Sprintf("Sold for %d", refund))
		a.focus = 0
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		mode, err := a.sim.CycleTargeting(a.focus)
		a.report(err, fmt.Sprintf("Targeting: %s", mode))
	}
}

// cursorTile 返回鼠标所在的地图格
func (a *App) cursorTile() (maze.Point, bool) {
	x, y := ebiten.CursorPosition()
	ts := int(a.sim.TileSize())
	tile := maze.Point{X: x / ts, Y: y / ts}
	if x < 0 || y < 0 || !a.sim.Grid().InBounds(tile) {
		return maze.Point{}, false
	}
	return tile, true
}

// click 点击已有建筑时选中它，否则按当前建造类型建造
func (a *App) click(tile maze.Point) {
	if id, ok := a.sim.StructureAt(tile); ok {
		a.focus = id
		return
	}

	kind := buildKinds[a.selected]
	var (
		id  ecs.EntityID
		err error
	)
	switch {
	case kind.sentinel:
		id, err = a.sim.BuildSentinel(tile)
	case kind.trap != "":
		id, err = a.sim.BuildTrap(kind.trap, tile)
	default:
		id, err = a.sim.BuildTower(kind.tower, tile)
	}
	a.report(err, fmt.Sprintf("Built %s", kind.label))
	if err == nil {
		a.focus = id
	}
}

func (a *App) upgrade(path types.UpgradePath) {
	tier, err := a.sim.Upgrade(a.focus, path)
	a.report(err, fmt.Sprintf("Upgraded: %s", tier.Name))
}

// report 记录命令结果，失败时显示简短原因
func (a *App) report(err error, success string) {
	switch {
	case err == nil:
		a.message = success
	case errors.Is(err, game.ErrInsufficientFunds):
		a.message = "Not enough gold"
	case errors.Is(err, game.ErrInvalidPlacement):
		a.message = "Cannot build there"
	case errors.Is(err, game.ErrUpgradeUnavailable):
		a.message = "Upgrade unavailable"
	case errors.Is(err, game.ErrAlreadySold), errors.Is(err, game.ErrUnknownStructure):
		a.message = "No such structure"
		a.focus = 0
	default:
		a.message = err.Error()
	}
}

// saveSettings 持久化界面偏好，失败只记录日志
func (a *App) saveSettings() {
	if err := a.settings.Save(); err != nil {
		logger.Log.WithError(err).Warn("[App] Failed to save settings")
	}
}

// recordRun 把结束的对局写入玩家进度
func (a *App) recordRun() {
	a.recorded = true
	if a.store == nil {
		return
	}
	res := a.store.RecordRun(a.sim.Record())
	if err := a.store.Save(); err != nil {
		logger.Log.WithError(err).Warn("[App] Failed to save progression")
	}
	logger.Log.WithFields(logrus.Fields{
		"xp":       res.XPGained,
		"levels":   res.LevelsGained,
		"unlocked": res.NewlyUnlocked,
	}).Info("[App] Run recorded")
	if len(res.NewlyUnlocked) > 0 {
		a.message = fmt.Sprintf("Unlocked modifiers %v", res.NewlyUnlocked)
	}
}

// Draw 绘制地图、实体与信息栏
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 24, G: 24, B: 30, A: 255})
	a.drawGrid(screen)
	a.drawStructures(screen)
	a.drawEnemies(screen)
	a.drawShots(screen)
	a.drawSidebar(screen)
}

// Layout 返回逻辑屏幕尺寸：地图加右侧信息栏
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	g := a.balance.Game
	return g.GridWidth*g.TileSize + sidebarWidth, g.GridHeight * g.TileSize
}

// Simulation 返回当前对局
func (a *App) Simulation() *game.Simulation {
	return a.sim
}
