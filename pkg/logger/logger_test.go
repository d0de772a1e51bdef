package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel logrus.Level
		wantJSON  bool
	}{
		{name: "默认配置", wantLevel: logrus.InfoLevel},
		{name: "调试级别", level: "debug", wantLevel: logrus.DebugLevel},
		{name: "非法级别回退到 info", level: "loud", wantLevel: logrus.InfoLevel},
		{name: "JSON 格式", format: "json", wantLevel: logrus.InfoLevel, wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.level != "" {
				t.Setenv("LOG_LEVEL", tt.level)
			} else {
				os.Unsetenv("LOG_LEVEL")
			}
			t.Setenv("LOG_FORMAT", tt.format)

			Init()

			if Log.GetLevel() != tt.wantLevel {
				t.Errorf("Expected level %v, got %v", tt.wantLevel, Log.GetLevel())
			}
			_, isJSON := Log.Formatter.(*logrus.JSONFormatter)
			if isJSON != tt.wantJSON {
				t.Errorf("Expected JSON formatter=%v, got %v", tt.wantJSON, isJSON)
			}
		})
	}
}

func TestSetVerboseAndOutput(t *testing.T) {
	Init()
	var buf bytes.Buffer
	SetOutput(&buf)

	Log.Debugf("[Test] hidden")
	if buf.Len() != 0 {
		t.Fatalf("Debug output should be suppressed at info level, got %q", buf.String())
	}

	SetVerbose(true)
	Log.Debugf("[Test] visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("Expected debug message after SetVerbose(true), got %q", buf.String())
	}

	SetVerbose(false)
	if Log.GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected info level after SetVerbose(false), got %v", Log.GetLevel())
	}
}
