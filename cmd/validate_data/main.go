package main

import (
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/gonewx/mazetd/pkg/config"
)

var dataDir = flag.String("data", "data", "平衡数据目录")

func main() {
	flag.Parse()
	failed := 0

	check := func(file string, load func(string) (string, error)) {
		summary, err := load(path.Join(*dataDir, file))
		if err != nil {
			fmt.Printf("❌ %s: %v\n", file, err)
			failed++
			return
		}
		fmt.Printf("✅ %s: %s\n", file, summary)
	}

	check(config.GameConfigFile, func(p string) (string, error) {
		c, err := config.LoadGameConfig(p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%dx%d 格, 目标波次 %d", c.GridWidth, c.GridHeight, c.TargetWave), nil
	})
	check(config.EnemyStatsFile, func(p string) (string, error) {
		c, err := config.LoadEnemyStats(p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d 种敌人", len(c.Enemies)), nil
	})
	check(config.StructureStatsFile, func(p string) (string, error) {
		c, err := config.LoadStructureStats(p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d 种防御塔, %d 种陷阱", len(c.Towers), len(c.Traps)), nil
	})
	check(config.WaveRulesFile, func(p string) (string, error) {
		c, err := config.LoadWaveRules(p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d 个阶段", len(c.Phases)), nil
	})
	check(config.ModifiersConfigFile, func(p string) (string, error) {
		c, err := config.LoadModifiers(p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d 个修正, 解锁等级 %v", len(c.Modifiers), c.UnlockLevels()), nil
	})

	if failed > 0 {
		fmt.Printf("❌ %d 个文件校验失败\n", failed)
		os.Exit(1)
	}
	fmt.Printf("✅ 所有平衡数据校验通过\n")
}
