package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/adrg/xdg"
)

func TestNewTestLogger(t *testing.T) {
	logger, buf := NewTestLogger()

	if logger == nil {
		t.Fatal("NewTestLogger returned nil logger")
	}
	if !logger.IsDebug() {
		t.Error("test logger should have debug enabled")
	}

	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected log output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("Expected log output to contain 'key=value', got: %s", output)
	}
}

func TestLogLevels(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	for _, msg := range []string{"debug message", "info message", "warn message", "error message"} {
		if !strings.Contains(output, msg) {
			t.Errorf("Expected log output to contain %q, got: %s", msg, output)
		}
	}
}

func TestNewCLILogger_Quiet(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCLILogger(&buf, false)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("shown warning", "agent", "cursor")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("quiet logger should drop debug and info, got: %s", output)
	}
	if !strings.Contains(output, "shown warning") || !strings.Contains(output, "agent=cursor") {
		t.Errorf("quiet logger should keep warnings, got: %s", output)
	}
}

func TestNewCLILogger_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCLILogger(&buf, true)

	logger.Debug("verbose debug")

	if !strings.Contains(buf.String(), "verbose debug") {
		t.Errorf("verbose logger should emit debug, got: %s", buf.String())
	}
}

func TestWith(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.With("agent", "claude").Info("wrote file")

	output := buf.String()
	if !strings.Contains(output, "agent=claude") {
		t.Errorf("Expected bound key in output, got: %s", output)
	}
}

func TestLogPerformance(t *testing.T) {
	logger, buf := NewTestLogger()

	start := time.Now()
	time.Sleep(1 * time.Millisecond)
	logger.LogPerformance("apply", start)

	output := buf.String()
	if !strings.Contains(output, "Performance") {
		t.Errorf("Expected log output to contain 'Performance', got: %s", output)
	}
	if !strings.Contains(output, "apply") {
		t.Errorf("Expected log output to contain operation name, got: %s", output)
	}
	if !strings.Contains(output, "duration") {
		t.Errorf("Expected log output to contain duration, got: %s", output)
	}
}

func TestNewAppLogger_DebugFile(t *testing.T) {
	stateHome := t.TempDir()
	t.Setenv("XDG_STATE_HOME", stateHome)
	t.Setenv("DEBUG", "1")
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	logger := NewAppLogger()
	if !logger.IsDebug() {
		t.Fatal("DEBUG should enable debug logging")
	}
	logger.Debug("written to file")

	logPath := filepath.Join(stateHome, "ruler", "ruler.log")
	if DebugLogPath() != logPath {
		t.Fatalf("DebugLogPath() = %s, want %s", DebugLogPath(), logPath)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("debug log file not created: %v", err)
	}
	if !strings.Contains(string(content), "written to file") {
		t.Errorf("debug log missing entry, got: %s", content)
	}
}

func TestGetDefault_Singleton(t *testing.T) {
	t.Setenv("DEBUG", "")
	defaultLogger = nil
	once = sync.Once{}

	logger1 := GetDefault()
	logger2 := GetDefault()

	if logger1 != logger2 {
		t.Error("Expected GetDefault() to return the same instance (singleton)")
	}
	if logger1.IsDebug() {
		t.Error("default logger without DEBUG should not be in debug mode")
	}
}

func BenchmarkInfo(b *testing.B) {
	logger, _ := NewTestLogger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
	}
}
