// verify_simulation 以无界面方式跑完整局，用于检查平衡数据与确定性
//
// 程序自动在终点附近铺设防御塔并逐步升级，结束后打印本局摘要。
// 相同的 --seed 与参数总是得到相同的结果。
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/gonewx/mazetd/pkg/config"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/game"
	"github.com/gonewx/mazetd/pkg/logger"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
	"github.com/quasilyte/gdata/v2"
	"github.com/sirupsen/logrus"
)

var (
	verbose   = flag.Bool("verbose", false, "显示详细调试信息")
	seed      = flag.Int64("seed", 1, "随机种子")
	waves     = flag.Int("waves", 10, "目标波次")
	modifiers = flag.String("modifiers", "", "本局修正 ID，逗号分隔")
	dataDir   = flag.String("data", "data", "平衡数据目录")
	frameDt   = flag.Float64("dt", 1.0/60.0, "每帧模拟时间（秒）")
	speed     = flag.Int("speed", 2, "速度倍率档位下标")
	maxTime   = flag.Float64("max-time", 7200, "最长模拟时间（秒）")
	record    = flag.Bool("record", false, "把结果写入玩家进度")
)

// actionInterval 自动布防的决策间隔（帧）
const actionInterval = 30

// towerRotation 自动布防按此顺序轮流建塔
var towerRotation = []types.TowerType{
	types.TowerPhysical,
	types.TowerMagic,
	types.TowerIce,
	types.TowerExecutioner,
}

// autoDefence 简单的自动布防策略
type autoDefence struct {
	sim        *game.Simulation
	candidates []maze.Point
	next       int // 下一个候选格
	rotation   int
	towers     []ecs.EntityID
	trapsBuilt bool
}

func newAutoDefence(sim *game.Simulation) *autoDefence {
	return &autoDefence{sim: sim, candidates: candidateTiles(sim)}
}

// candidateTiles 返回紧邻路径的地面格，离终点越近越靠前
func candidateTiles(sim *game.Simulation) []maze.Point {
	g := sim.Grid()
	goal := sim.Goal()
	var tiles []maze.Point
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := maze.Point{X: x, Y: y}
			if g.At(p) != types.TileFloor || !nearPath(g, p) {
				continue
			}
			tiles = append(tiles, p)
		}
	}
	sort.SliceStable(tiles, func(i, j int) bool {
		return tiles[i].Manhattan(goal) < tiles[j].Manhattan(goal)
	})
	return tiles
}

func nearPath(g *maze.Grid, p maze.Point) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if g.IsPath(maze.Point{X: p.X + dx, Y: p.Y + dy}) {
				return true
			}
		}
	}
	return false
}

// act 建造或升级，每次最多执行一个动作
func (d *autoDefence) act() {
	if !d.trapsBuilt {
		d.placeTraps()
	}

	tower := towerRotation[d.rotation%len(towerRotation)]
	for d.next < len(d.candidates) {
		id, err := d.sim.BuildTower(tower, d.candidates[d.next])
		switch {
		case err == nil:
			d.towers = append(d.towers, id)
			d.rotation++
			d.next++
			return
		case errors.Is(err, game.ErrInvalidPlacement):
			d.next++
			continue
		}
		break
	}

	for _, id := range d.towers {
		for _, path := range []types.UpgradePath{types.Path1, types.Path2} {
			if _, err := d.sim.Upgrade(id, path); err == nil {
				return
			}
		}
	}
}

// placeTraps 在每条路线靠近终点的位置放置一个火焰陷阱
func (d *autoDefence) placeTraps() {
	goal := d.sim.Goal()
	g := d.sim.Grid()
	for r := 2; r < 6; r++ {
		for _, p := range []maze.Point{{X: goal.X + r, Y: goal.Y}, {X: goal.X - r, Y: goal.Y}, {X: goal.X, Y: goal.Y + r}, {X: goal.X, Y: goal.Y - r}} {
			if !g.IsPath(p) {
				continue
			}
			if _, err := d.sim.BuildTrap(types.TrapFire, p); err == nil {
				d.trapsBuilt = true
				return
			}
		}
	}
	d.trapsBuilt = true
}

func main() {
	flag.Parse()

	logger.Init()
	logger.SetVerbose(*verbose)

	mods, err := config.ParseModifierIDs(*modifiers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --modifiers: %v\n", err)
		os.Exit(2)
	}
	balance, err := config.LoadBalance(*dataDir)
	if err != nil {
		logger.Log.WithError(err).Warn("[Verify] Some balance files failed to load, using defaults for them")
	}

	sim := game.NewSimulation(game.Options{
		Seed:       *seed,
		TargetWave: *waves,
		Modifiers:  mods,
		Game:       balance.Game,
		Enemies:    balance.Enemies,
		Structures: balance.Structures,
		Waves:      balance.Waves,
		ModifierDB: balance.Modifiers,
	})
	if !sim.SetSpeed(*speed) {
		logger.Log.Warnf("[Verify] Speed index %d out of range, using x%.0f", *speed, sim.SpeedMultiplier())
	}

	defence := newAutoDefence(sim)
	frames := 0
	lastWave := sim.State.Wave
	for !sim.State.IsOver() && sim.Elapsed() < *maxTime {
		if frames%actionInterval == 0 {
			defence.act()
		}
		sim.Tick(*frameDt)
		frames++

		if sim.State.Wave != lastWave {
			lastWave = sim.State.Wave
			logger.Log.WithFields(logrus.Fields{
				"wave":  lastWave,
				"money": sim.State.Money,
				"lives": sim.State.Lives,
				"lanes": len(sim.Lanes()),
			}).Info("[Verify] Wave started")
		}
	}

	printSummary(sim, len(defence.towers), frames)

	if *record {
		recordRun(sim, balance.Modifiers)
	}
	if !sim.State.Won {
		os.Exit(1)
	}
}

func printSummary(sim *game.Simulation, towers, frames int) {
	gs := sim.State
	outcome := "timeout"
	switch {
	case gs.Won:
		outcome = "won"
	case gs.Lost:
		outcome = "lost"
	}
	hits, misses := sim.PathStats()

	fmt.Println("=== Simulation summary ===")
	fmt.Printf("run:           %s\n", gs.RunID)
	fmt.Printf("seed:          %d\n", sim.Seed)
	fmt.Printf("outcome:       %s\n", outcome)
	fmt.Printf("waves cleared: %d / %d\n", gs.WavesCleared, gs.TargetWave)
	fmt.Printf("lives:         %d\n", gs.Lives)
	fmt.Printf("money:         %d\n", gs.Money)
	fmt.Printf("kills:         %d (bosses %d)\n", gs.Kills, gs.BossKills)
	fmt.Printf("towers built:  %d\n", towers)
	fmt.Printf("lanes:         %d\n", len(sim.Lanes()))
	fmt.Printf("sim time:      %.1fs over %d frames\n", sim.Elapsed(), frames)
	fmt.Printf("path cache:    %d hits, %d misses\n", hits, misses)
	fmt.Printf("run xp:        %d\n", game.RunXP(gs.WavesCleared, gs.BossKills, gs.Won))
}

// recordRun 把本局结果写入持久化进度
func recordRun(sim *game.Simulation, mods *config.ModifiersConfig) {
	manager, err := gdata.Open(gdata.Config{AppName: "mazetd"})
	if err != nil {
		logger.Log.WithError(err).Error("[Verify] Cannot open progression storage")
		return
	}
	store, err := game.NewProgressionStore(manager, mods)
	if err != nil {
		logger.Log.WithError(err).Warn("[Verify] Progression data was reset")
	}
	res := store.RecordRun(sim.Record())
	if err := store.Save(); err != nil {
		logger.Log.WithError(err).Error("[Verify] Failed to save progression")
		return
	}
	p := store.Progression()
	fmt.Printf("progression:   level %d (%d xp), +%d levels, unlocked %v\n",
		p.Level, p.XP, res.LevelsGained, res.NewlyUnlocked)
}
