package main

import (
	"flag"
	"os"
	"time"

	"github.com/gonewx/mazetd/pkg/app"
	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/embedded"
	"github.com/gonewx/mazetd/pkg/game"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"
	"github.com/sirupsen/logrus"
)

var (
	verbose   = flag.Bool("verbose", false, "显示详细调试信息")
	seed      = flag.Int64("seed", 0, "随机种子（0 表示使用当前时间）")
	waves     = flag.Int("waves", 0, "目标波次（0 表示使用配置默认值）")
	modifiers = flag.String("modifiers", "", "本局修正 ID，逗号分隔，如 1,4,7")
	dataDir   = flag.String("data", "data", "平衡数据目录")
)

func main() {
	flag.Parse()

	logger.Init()
	logger.SetVerbose(*verbose)
	embedded.Init(dataFS)

	mods, err := config.ParseModifierIDs(*modifiers)
	if err != nil {
		logger.Log.WithError(err).Fatal("[Main] Invalid --modifiers")
	}

	balance, err := config.LoadBalance(*dataDir)
	if err != nil {
		logger.Log.WithError(err).Warn("[Main] Some balance files failed to load, using defaults for them")
	}

	runSeed := *seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}

	// 无法打开存储时进入降级模式，进度只保存在内存中
	manager, err := gdata.Open(gdata.Config{AppName: "mazetd"})
	if err != nil {
		logger.Log.WithError(err).Warn("[Main] Persistent storage unavailable, progression will not be saved")
		manager = nil
	}
	store, err := game.NewProgressionStore(manager, balance.Modifiers)
	if err != nil {
		logger.Log.WithError(err).Warn("[Main] Failed to load progression, starting fresh")
	}
	settings := game.NewSettingsManager(manager)
	if *modifiers == "" {
		mods = settings.GetSettings().LastModifiers
	}

	p := store.Progression()
	logger.Log.WithFields(logrus.Fields{
		"seed":     runSeed,
		"level":    p.Level,
		"unlocked": p.UnlockedModifiers,
		"selected": mods,
	}).Info("[Main] Starting run")

	application, err := app.NewApp(app.Config{
		Seed:       runSeed,
		TargetWave: *waves,
		Modifiers:  mods,
		Balance:    balance,
	}, store, settings)
	if err != nil {
		logger.Log.WithError(err).Error("[Main] Failed to create app")
		os.Exit(1)
	}

	ebiten.SetWindowTitle("Maze Tower Defense")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(application); err != nil {
		logger.Log.WithError(err).Fatal("[Main] Game loop exited with error")
	}
}
