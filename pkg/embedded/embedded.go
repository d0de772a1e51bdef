// Package embedded 提供嵌入数据文件的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包提供包装函数，让其他包可以访问嵌入的平衡数据。
//
// 以 "data/" 开头的路径优先从嵌入文件系统读取；
// 其他路径（或未初始化时）直接读取磁盘文件，便于测试和自定义配置。
package embedded

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	dataFS      fs.FS
	initialized bool
)

// Init 初始化嵌入文件系统
// 必须在 main() 开始时、任何配置加载之前调用
func Init(data fs.FS) {
	dataFS = data
	initialized = data != nil
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// normalize 标准化路径分隔符并移除 "./" 前缀
func normalize(path string) string {
	path = filepath.ToSlash(path)
	return strings.TrimPrefix(path, "./")
}

// isDataPath 判断路径是否指向嵌入的数据目录
func isDataPath(path string) bool {
	return strings.HasPrefix(path, "data/")
}

// ReadFile 读取文件内容
//
// 参数：
//
//	path - 文件路径，"data/" 前缀的路径从嵌入文件系统读取
//
// 返回：
//
//	[]byte - 文件内容
//	error - 文件不存在或读取失败
func ReadFile(path string) ([]byte, error) {
	path = normalize(path)

	if initialized && isDataPath(path) {
		data, err := fs.ReadFile(dataFS, path)
		if err == nil {
			return data, nil
		}
		// 嵌入数据缺失时回退到磁盘，便于开发期间热修改
		if diskData, diskErr := os.ReadFile(path); diskErr == nil {
			return diskData, nil
		}
		return nil, fmt.Errorf("failed to read embedded file %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}

// Exists 检查文件是否存在（嵌入文件系统或磁盘）
func Exists(path string) bool {
	path = normalize(path)
	if initialized && isDataPath(path) {
		if _, err := fs.Stat(dataFS, path); err == nil {
			return true
		}
	}
	_, err := os.Stat(path)
	return err == nil
}

// Glob 在嵌入文件系统中匹配文件
// 路径模式必须以 "data/" 开头
func Glob(pattern string) ([]string, error) {
	if !initialized {
		return nil, fmt.Errorf("embedded package not initialized, call Init() first")
	}

	pattern = normalize(pattern)
	if !isDataPath(pattern) {
		return nil, fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", pattern)
	}
	return fs.Glob(dataFS, pattern)
}
