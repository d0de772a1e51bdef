// Package logger 提供全局结构化日志实例
//
// 所有系统通过 logger.Log 输出日志，消息以 "[系统名]" 前缀标识来源。
// 程序启动时应调用 Init()，未调用时使用 logrus 默认配置。
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log 全局日志实例
var Log = logrus.New()

// Init 初始化全局日志
//
// 环境变量：
//   - LOG_LEVEL: 日志级别（debug/info/warn/error），默认 info
//   - LOG_FORMAT: "json" 使用 JSON 格式，否则使用文本格式
func Init() {
	Log = logrus.New()

	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	Log.SetOutput(os.Stdout)
}

// SetOutput 重定向日志输出（测试中用于静默或捕获日志）
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// SetVerbose 开启或关闭调试级别日志
func SetVerbose(verbose bool) {
	if verbose {
		Log.SetLevel(logrus.DebugLevel)
		return
	}
	Log.SetLevel(logrus.InfoLevel)
}
