package game

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gonewx/mazetd/pkg/config"
	"github.com/quasilyte/gdata/v2"
)

// createTestGdataManager 创建用于测试的 gdata Manager
// 无法创建时返回 nil，调用方应跳过测试
func createTestGdataManager(t *testing.T, testName string) *gdata.Manager {
	appName := fmt.Sprintf("mazetd_test_%s_%d", testName, time.Now().UnixNano())
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil
	}

	// 测试结束后删除测试目录
	t.Cleanup(func() {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			os.RemoveAll(filepath.Join(homeDir, ".local", "share", appName))
		}
	})

	return manager
}

func TestXPToNext(t *testing.T) {
	tests := []struct {
		level  int
		expect int
	}{
		{1, 100},
		{2, 254},
		{3, 440},
		{0, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("等级%d", tt.level), func(t *testing.T) {
			if got := XPToNext(tt.level); got != tt.expect {
				t.Errorf("XPToNext(%d) = %d, want %d", tt.level, got, tt.expect)
			}
		})
	}
}

func TestRunXP(t *testing.T) {
	if got := RunXP(10, 2, true); got != 450 {
		t.Errorf("RunXP(10, 2, true) = %d, want 450", got)
	}
	if got := RunXP(3, 0, false); got != 75 {
		t.Errorf("RunXP(3, 0, false) = %d, want 75", got)
	}
	if got := RunXP(0, 0, false); got != 0 {
		t.Errorf("RunXP(0, 0, false) = %d, want 0", got)
	}
}

// TestProgressionStoreNilGdata 测试 gdataManager 为 nil 时的内存模式
func TestProgressionStoreNilGdata(t *testing.T) {
	ps, err := NewProgressionStore(nil, nil)
	if err != nil {
		t.Fatalf("NewProgressionStore(nil) error: %v", err)
	}

	p := ps.Progression()
	if p.Level != 1 || p.XP != 0 {
		t.Errorf("level=%d xp=%d, want 1 and 0", p.Level, p.XP)
	}
	if !reflect.DeepEqual(p.UnlockedModifiers, []int{1, 2, 3}) {
		t.Errorf("UnlockedModifiers = %v, want [1 2 3]", p.UnlockedModifiers)
	}
	if err := ps.Save(); err != nil {
		t.Errorf("Save() in memory mode should not fail: %v", err)
	}
}

func TestProgressionAddXP(t *testing.T) {
	t.Run("单次升级解锁", func(t *testing.T) {
		ps, _ := NewProgressionStore(nil, config.DefaultModifiers())
		res := ps.AddXP(120)
		if res.LevelsGained != 1 {
			t.Errorf("LevelsGained = %d, want 1", res.LevelsGained)
		}
		if !reflect.DeepEqual(res.NewlyUnlocked, []int{4}) {
			t.Errorf("NewlyUnlocked = %v, want [4]", res.NewlyUnlocked)
		}
		p := ps.Progression()
		if p.Level != 2 || p.XP != 20 {
			t.Errorf("level=%d xp=%d, want 2 and 20", p.Level, p.XP)
		}
		if !ps.IsUnlocked(4) {
			t.Error("modifier 4 should be unlocked at level 2")
		}
	})

	t.Run("连续升级", func(t *testing.T) {
		ps, _ := NewProgressionStore(nil, config.DefaultModifiers())
		// 100 + 254 + 440 = 794 升到 4 级
		res := ps.AddXP(800)
		if res.LevelsGained != 3 {
			t.Errorf("LevelsGained = %d, want 3", res.LevelsGained)
		}
		if !reflect.DeepEqual(res.NewlyUnlocked, []int{4, 5, 6}) {
			t.Errorf("NewlyUnlocked = %v, want [4 5 6]", res.NewlyUnlocked)
		}
		if p := ps.Progression(); p.Level != 4 || p.XP != 6 {
			t.Errorf("level=%d xp=%d, want 4 and 6", p.Level, p.XP)
		}
	})

	t.Run("经验不足", func(t *testing.T) {
		ps, _ := NewProgressionStore(nil, config.DefaultModifiers())
		res := ps.AddXP(99)
		if res.LevelsGained != 0 || len(res.NewlyUnlocked) != 0 {
			t.Errorf("unexpected progress: %+v", res)
		}
	})

	t.Run("负经验忽略", func(t *testing.T) {
		ps, _ := NewProgressionStore(nil, config.DefaultModifiers())
		ps.AddXP(-50)
		if p := ps.Progression(); p.XP != 0 {
			t.Errorf("XP = %d, want 0", p.XP)
		}
	})
}

func TestProgressionRecordRun(t *testing.T) {
	ps, _ := NewProgressionStore(nil, config.DefaultModifiers())

	res := ps.RecordRun(RunRecord{ID: "run-1", WavesCleared: 4, BossKills: 0})
	if res.XPGained != 100 || res.LevelsGained != 1 {
		t.Errorf("RecordRun result = %+v, want 100 xp and one level", res)
	}

	for i := 0; i < maxRunHistory+5; i++ {
		ps.RecordRun(RunRecord{ID: fmt.Sprintf("run-%d", i+2)})
	}
	runs := ps.Progression().RecentRuns
	if len(runs) != maxRunHistory {
		t.Fatalf("len(RecentRuns) = %d, want %d", len(runs), maxRunHistory)
	}
	if last := runs[len(runs)-1].ID; last != fmt.Sprintf("run-%d", maxRunHistory+6) {
		t.Errorf("latest run = %s", last)
	}
	if runs[0].XP != 0 {
		t.Errorf("XP is recomputed from the record, got %d", runs[0].XP)
	}
}

// TestProgressionSaveAndLoad 测试保存后重新加载
func TestProgressionSaveAndLoad(t *testing.T) {
	manager := createTestGdataManager(t, "save_load")
	if manager == nil {
		t.Skip("Cannot create gdata manager for testing")
	}

	ps, err := NewProgressionStore(manager, nil)
	if err != nil {
		t.Fatalf("NewProgressionStore() error: %v", err)
	}
	ps.AddXP(500)
	ps.RecordRun(RunRecord{ID: "abc", Seed: 42, TargetWave: 10, WavesCleared: 10, Won: true})
	if err := ps.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded, err := NewProgressionStore(manager, nil)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	want, got := ps.Progression(), reloaded.Progression()
	if got.Level != want.Level || got.XP != want.XP {
		t.Errorf("reloaded level=%d xp=%d, want %d and %d", got.Level, got.XP, want.Level, want.XP)
	}
	if !reflect.DeepEqual(got.UnlockedModifiers, want.UnlockedModifiers) {
		t.Errorf("UnlockedModifiers = %v, want %v", got.UnlockedModifiers, want.UnlockedModifiers)
	}
	if len(got.RecentRuns) != 1 || got.RecentRuns[0].ID != "abc" || !got.RecentRuns[0].Won {
		t.Errorf("RecentRuns = %+v", got.RecentRuns)
	}
}

// TestProgressionSanitize 测试加载时修正非法数据与旧 ID
func TestProgressionSanitize(t *testing.T) {
	manager := createTestGdataManager(t, "sanitize")
	if manager == nil {
		t.Skip("Cannot create gdata manager for testing")
	}

	raw := []byte("level: 0\nxp: -10\nunlockedModifiers: [1, 17, 1, -3, 23]\n")
	if err := manager.SaveObjectProp(progressionObject, progressionProperty, raw); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	ps, err := NewProgressionStore(manager, nil)
	if err != nil {
		t.Fatalf("NewProgressionStore() error: %v", err)
	}
	p := ps.Progression()
	if p.Level != 1 || p.XP != 0 {
		t.Errorf("level=%d xp=%d, want 1 and 0", p.Level, p.XP)
	}
	if !reflect.DeepEqual(p.UnlockedModifiers, []int{1, 13, 14}) {
		t.Errorf("UnlockedModifiers = %v, want [1 13 14]", p.UnlockedModifiers)
	}
	if !ps.IsUnlocked(17) {
		t.Error("legacy id 17 should resolve to unlocked modifier 13")
	}
}

// TestProgressionCorruptedData 测试数据损坏时回退到默认值
func TestProgressionCorruptedData(t *testing.T) {
	manager := createTestGdataManager(t, "corrupted")
	if manager == nil {
		t.Skip("Cannot create gdata manager for testing")
	}

	if err := manager.SaveObjectProp(progressionObject, progressionProperty, []byte("level: [unclosed")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	ps, err := NewProgressionStore(manager, nil)
	if err == nil {
		t.Error("expected an error for corrupted progression data")
	}
	if ps == nil {
		t.Fatal("store should still be created with defaults")
	}
	if p := ps.Progression(); p.Level != 1 || len(p.UnlockedModifiers) != 3 {
		t.Errorf("expected defaults, got %+v", p)
	}
}
