package app

import (
	"fmt"
	"image/color"

	"github.com/gonewx/mazetd/pkg/components"
	"github.com/gonewx/mazetd/pkg/ecs"
	"github.com/gonewx/mazetd/pkg/maze"
	"github.com/gonewx/mazetd/pkg/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colorWall     = color.RGBA{R: 44, G: 44, B: 52, A: 255}
	colorFloor    = color.RGBA{R: 70, G: 96, B: 64, A: 255}
	colorPath     = color.RGBA{R: 150, G: 128, B: 92, A: 255}
	colorGoal     = color.RGBA{R: 220, G: 200, B: 60, A: 255}
	colorLane     = color.RGBA{R: 200, G: 60, B: 60, A: 255}
	colorBarrier  = color.RGBA{R: 120, G: 200, B: 255, A: 160}
	colorHPBack   = color.RGBA{R: 60, G: 0, B: 0, A: 255}
	colorHP       = color.RGBA{R: 60, G: 220, B: 60, A: 255}
	colorShield   = color.RGBA{R: 120, G: 180, B: 255, A: 255}
	colorLaser    = color.RGBA{R: 160, G: 230, B: 255, A: 255}
	colorShot     = color.RGBA{R: 255, G: 255, B: 200, A: 255}
	colorFocus    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorFrozen   = color.RGBA{R: 140, G: 200, B: 255, A: 255}
	colorSidebar  = color.RGBA{R: 16, G: 16, B: 20, A: 255}
	colorSentinel = color.RGBA{R: 90, G: 160, B: 230, A: 255}
)

var towerColors = map[types.TowerType]color.RGBA{
	types.TowerPhysical:    {R: 180, G: 140, B: 90, A: 255},
	types.TowerMagic:       {R: 170, G: 90, B: 220, A: 255},
	types.TowerIce:         {R: 90, G: 200, B: 240, A: 255},
	types.TowerExecutioner: {R: 200, G: 40, B: 40, A: 255},
}

var trapColors = map[types.TrapType]color.RGBA{
	types.TrapFire:   {R: 240, G: 120, B: 30, A: 200},
	types.TrapSpikes: {R: 160, G: 160, B: 170, A: 200},
}

var enemyColors = map[types.EnemyType]color.RGBA{
	types.EnemyFighter:  {R: 210, G: 90, B: 60, A: 255},
	types.EnemyTank:     {R: 120, G: 120, B: 140, A: 255},
	types.EnemyMage:     {R: 120, G: 80, B: 220, A: 255},
	types.EnemyAssassin: {R: 250, G: 220, B: 80, A: 255},
	types.EnemyHealer:   {R: 100, G: 230, B: 140, A: 255},
	types.EnemySwarm:    {R: 200, G: 160, B: 120, A: 255},
}

// bossColor 所有 Boss 使用的颜色
var bossColor = color.RGBA{R: 255, G: 40, B: 120, A: 255}

func (a *App) drawGrid(screen *ebiten.Image) {
	g := a.sim.Grid()
	ts := float32(a.sim.TileSize())
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			clr := colorWall
			switch g.At(maze.Point{X: x, Y: y}) {
			case types.TileFloor:
				clr = colorFloor
			case types.TilePath:
				clr = colorPath
			}
			vector.DrawFilledRect(screen, float32(x)*ts, float32(y)*ts, ts-1, ts-1, clr, false)
		}
	}

	goal := a.sim.Goal()
	vector.DrawFilledRect(screen, float32(goal.X)*ts, float32(goal.Y)*ts, ts, ts, colorGoal, false)
	for _, lane := range a.sim.Lanes() {
		vector.StrokeRect(screen, float32(lane.X)*ts+1, float32(lane.Y)*ts+1, ts-2, ts-2, 2, colorLane, false)
	}
}

func (a *App) drawStructures(screen *ebiten.Image) {
	em := a.sim.EntityManager()
	ts := float32(a.sim.TileSize())

	for _, id := range ecs.GetEntitiesWith2[*components.StructureComponent, *components.PositionComponent](em) {
		if em.IsPendingDestroy(id) {
			continue
		}
		st, _ := ecs.GetComponent[*components.StructureComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		x, y := float32(pos.X), float32(pos.Y)

		switch st.Kind {
		case types.StructureTower:
			tower, _ := ecs.GetComponent[*components.TowerComponent](em, id)
			vector.DrawFilledRect(screen, x-ts*0.4, y-ts*0.4, ts*0.8, ts*0.8, towerColors[tower.Type], false)
			if id == a.focus || a.settings.GetSettings().ShowRanges {
				vector.StrokeCircle(screen, x, y, float32(tower.Range), 1, colorFocus, true)
			}
		case types.StructureTrap:
			trap, _ := ecs.GetComponent[*components.TrapComponent](em, id)
			vector.DrawFilledRect(screen, x-ts/2, y-ts/2, ts, ts, trapColors[trap.Type], false)
		case types.StructureSentinel:
			sen, _ := ecs.GetComponent[*components.SentinelComponent](em, id)
			vector.DrawFilledCircle(screen, x, y, ts*0.4, colorSentinel, true)
			if sen.Active {
				b := sen.BarrierTile
				vector.DrawFilledRect(screen, float32(b.X)*ts, float32(b.Y)*ts, ts, ts, colorBarrier, false)
			}
			if id == a.focus {
				vector.StrokeCircle(screen, x, y, float32(sen.Range), 1, colorFocus, true)
			}
		}
		if id == a.focus {
			vector.StrokeRect(screen, float32(st.Tile.X)*ts, float32(st.Tile.Y)*ts, ts, ts, 1, colorFocus, false)
		}
	}
}

func (a *App) drawEnemies(screen *ebiten.Image) {
	em := a.sim.EntityManager()
	for _, id := range a.sim.LiveEnemies() {
		enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, id)
		pos, ok := ecs.GetComponent[*components.PositionComponent](em, id)
		if !ok {
			continue
		}
		hp, _ := ecs.GetComponent[*components.HealthComponent](em, id)

		clr, known := enemyColors[enemy.Type]
		if enemy.Type.IsBoss() || !known {
			clr = bossColor
		}
		if st, ok := ecs.GetComponent[*components.StatusComponent](em, id); ok && st.Active(types.EffectFrozen) {
			clr = colorFrozen
		}

		x, y, r := float32(pos.X), float32(pos.Y), float32(enemy.Size)
		vector.DrawFilledCircle(screen, x, y, r, clr, true)

		w := r * 2
		vector.DrawFilledRect(screen, x-r, y-r-4, w, 2, colorHPBack, false)
		vector.DrawFilledRect(screen, x-r, y-r-4, w*float32(hp.Fraction()), 2, colorHP, false)
		if hp.Shield > 0 {
			vector.DrawFilledRect(screen, x-r, y-r-6, w, 1, colorShield, false)
		}
	}
}

func (a *App) drawShots(screen *ebiten.Image) {
	em := a.sim.EntityManager()
	for _, p := range a.sim.Projectiles() {
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), 2, colorShot, true)
	}
	for _, l := range a.sim.Lasers() {
		from, ok1 := ecs.GetComponent[*components.PositionComponent](em, l.TowerID)
		to, ok2 := ecs.GetComponent[*components.PositionComponent](em, l.TargetID)
		if !ok1 || !ok2 {
			continue
		}
		vector.StrokeLine(screen, float32(from.X), float32(from.Y), float32(to.X), float32(to.Y), 1.5, colorLaser, true)
	}
}

func (a *App) drawSidebar(screen *ebiten.Image) {
	g := a.balance.Game
	left := g.GridWidth * g.TileSize
	vector.DrawFilledRect(screen, float32(left), 0, sidebarWidth, float32(g.GridHeight*g.TileSize), colorSidebar, false)

	gs := a.sim.State
	x, y := left+8, 8
	line := func(format string, args ...any) {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf(format, args...), x, y)
		y += 16
	}

	line("Wave %d / %d", gs.Wave, gs.TargetWave)
	line("Gold %d   Lives %d", gs.Money, gs.Lives)
	line("Kills %d   Bosses %d", gs.Kills, gs.BossKills)
	line("Speed x%.0f%s", a.sim.SpeedMultiplier(), pausedSuffix(a.sim.Paused()))
	if next := a.sim.Intermission(); next > 0 {
		line("Next wave in %.1fs", next)
	} else {
		line("Spawning: %d left", a.sim.WaveRemaining())
	}
	y += 8

	for i, kind := range buildKinds {
		marker := " "
		if i == a.selected {
			marker = ">"
		}
		cost, _ := a.sim.BuildCost(kind.costKey)
		line("%s%d %-12s %4d", marker, i+1, kind.label, cost)
	}
	y += 8

	if a.focus != 0 {
		a.drawFocus(line)
		y += 8
	}

	switch {
	case gs.Won:
		line("VICTORY  (R: new run)")
	case gs.Lost:
		line("DEFEAT   (R: new run)")
	}
	if a.message != "" {
		line("%s", a.message)
	}

	y = g.GridHeight*g.TileSize - 5*16
	line("Click: build / select")
	line("U/I upgrade  S sell")
	line("T targeting  Space speed")
	line("P pause  G ranges  F11 full")
}

// drawFocus 显示选中建筑的升级与出售信息
func (a *App) drawFocus(line func(string, ...any)) {
	em := a.sim.EntityManager()
	st, ok := ecs.GetComponent[*components.StructureComponent](em, a.focus)
	if !ok {
		return
	}
	line("[%s]", st.Name)
	if tower, ok := ecs.GetComponent[*components.TowerComponent](em, a.focus); ok {
		line("Target: %s", tower.Targeting)
	}
	for _, path := range []types.UpgradePath{types.Path1, types.Path2} {
		if tier, err := a.sim.NextUpgrade(a.focus, path); err == nil {
			line("%d: %s (%d)", path, tier.Name, tier.Cost)
		}
	}
	if v, err := a.sim.SellValueOf(a.focus); err == nil {
		line("Sell: %d", v)
	}
}

func pausedSuffix(paused bool) string {
	if paused {
		return " (paused)"
	}
	return ""
}
