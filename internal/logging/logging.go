package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

const appName = "ruler"

type AppLogger struct {
	logger *log.Logger
	debug  bool
}

var (
	defaultLogger *AppLogger
	once          sync.Once
)

// GetDefault returns the process-wide logger, building it on first use.
func GetDefault() *AppLogger {
	once.Do(func() {
		defaultLogger = NewAppLogger()
	})
	return defaultLogger
}

// DebugLogPath is where NewAppLogger writes when DEBUG is set.
func DebugLogPath() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

// NewAppLogger builds the logger used outside of CLI commands. With DEBUG
// set it logs everything to DebugLogPath, truncated on each run; otherwise
// it logs warnings and errors to stderr.
func NewAppLogger() *AppLogger {
	if os.Getenv("DEBUG") == "" {
		return NewCLILogger(os.Stderr, false)
	}

	logPath := DebugLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		panic(fmt.Sprintf("Failed to create debug log directory: %v", err))
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		panic(fmt.Sprintf("Failed to create debug log file: %v", err))
	}

	logger := log.NewWithOptions(logFile, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          appName,
	})
	logger.SetLevel(log.DebugLevel)
	logger.Info("Debug logging enabled", "log_file", logPath)

	return &AppLogger{logger: logger, debug: true}
}

// NewCLILogger logs to w. verbose enables debug output; otherwise only
// warnings and errors are shown.
func NewCLILogger(w io.Writer, verbose bool) *AppLogger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: verbose,
		TimeFormat:      time.TimeOnly,
		Prefix:          appName,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	return &AppLogger{logger: logger, debug: verbose}
}

func (al *AppLogger) Info(msg string, keyvals ...interface{}) {
	al.logger.Info(msg, keyvals...)
}

func (al *AppLogger) Warn(msg string, keyvals ...interface{}) {
	al.logger.Warn(msg, keyvals...)
}

func (al *AppLogger) Error(msg string, keyvals ...interface{}) {
	al.logger.Error(msg, keyvals...)
}

func (al *AppLogger) Debug(msg string, keyvals ...interface{}) {
	if al.debug {
		al.logger.Debug(msg, keyvals...)
	}
}

// IsDebug reports whether debug output is enabled.
func (al *AppLogger) IsDebug() bool {
	return al.debug
}

// With returns a logger that adds keyvals to every entry.
func (al *AppLogger) With(keyvals ...interface{}) *AppLogger {
	return &AppLogger{logger: al.logger.With(keyvals...), debug: al.debug}
}

// LogPerformance logs the time elapsed since start (debug only).
func (al *AppLogger) LogPerformance(operation string, start time.Time) {
	if al.debug {
		al.logger.Debug("Performance",
			"operation", operation,
			"duration", time.Since(start),
		)
	}
}

// NewTestLogger creates a logger that writes to a buffer for testing
func NewTestLogger() (*AppLogger, *bytes.Buffer) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          "Test",
	})
	logger.SetLevel(log.DebugLevel)

	return &AppLogger{
		logger: logger,
		debug:  true,
	}, &buf
}
