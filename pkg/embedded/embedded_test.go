package embedded

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

// resetState 重置包级状态以避免测试之间互相影响
func resetState() {
	dataFS = nil
	initialized = false
}

// TestIsInitialized 测试初始化状态检测
func TestIsInitialized(t *testing.T) {
	resetState()
	defer resetState()

	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}

	Init(fstest.MapFS{})

	if !IsInitialized() {
		t.Error("Expected IsInitialized() to return true after Init()")
	}
}

// TestReadFile 测试嵌入读取与磁盘回退
func TestReadFile(t *testing.T) {
	resetState()
	defer resetState()

	Init(fstest.MapFS{
		"data/game.yaml": &fstest.MapFile{Data: []byte("startMoney: 300\n")},
	})

	t.Run("读取嵌入文件", func(t *testing.T) {
		data, err := ReadFile("./data/game.yaml")
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(data) != "startMoney: 300\n" {
			t.Errorf("Unexpected content: %q", string(data))
		}
	})

	t.Run("读取磁盘文件", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("lives: 10\n"), 0644); err != nil {
			t.Fatalf("Failed to write fixture: %v", err)
		}
		data, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(data) != "lives: 10\n" {
			t.Errorf("Unexpected content: %q", string(data))
		}
	})

	t.Run("文件不存在", func(t *testing.T) {
		if _, err := ReadFile("data/missing.yaml"); err == nil {
			t.Error("Expected error for missing embedded file")
		}
		if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("Expected error for missing disk file")
		}
	})
}

// TestExistsAndGlob 测试存在性检查与模式匹配
func TestExistsAndGlob(t *testing.T) {
	resetState()
	defer resetState()

	if _, err := Glob("data/*.yaml"); err == nil {
		t.Error("Expected error when calling Glob() before Init()")
	}

	Init(fstest.MapFS{
		"data/a.yaml": &fstest.MapFile{Data: []byte("a")},
		"data/b.yaml": &fstest.MapFile{Data: []byte("b")},
	})

	if !Exists("data/a.yaml") {
		t.Error("Expected data/a.yaml to exist")
	}
	if Exists("data/c.yaml") {
		t.Error("Expected data/c.yaml to be missing")
	}

	matches, err := Glob("data/*.yaml")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Expected 2 matches, got %d", len(matches))
	}

	if _, err := Glob("assets/*.png"); err == nil {
		t.Error("Expected error for non-data prefix")
	}
}
