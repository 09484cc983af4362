// Package debug provides conditional debug logging for wb.
//
// Debug logging is enabled by setting the WB_DEBUG environment variable,
// passing --debug, or naming a log file with --debug-file:
//
//	WB_DEBUG=1 wb
//	wb --debug-file /tmp/wb.log
//
// The TUI owns the terminal, so messages go to a file: the --debug-file path,
// else WB_DEBUG_FILE, else debug.log in the wb state directory. When disabled
// (default), all debug functions are no-ops.
//
// Usage:
//
//	debug.Log("reveal %s fired", step)
//	debug.LogTiming("view_render.avg", avg)
//	defer debug.LogEnterExit("boundary.reset")()
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  = zap.NewNop().Sugar()
)

func init() {
	if os.Getenv("WB_DEBUG") != "" {
		SetEnabled(true)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
// Enabling builds the file logger on first use; if the log file cannot be
// opened the logger falls back to stderr.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	if e == enabled {
		return
	}
	enabled = e
	if !e {
		_ = logger.Sync()
		logger = zap.NewNop().Sugar()
		return
	}
	logger = newLogger(logPath())
}

// SetOutput points the debug logger at path ("stderr" is accepted) and
// enables it.
func SetOutput(path string) {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
	logger = newLogger(path)
}

func logPath() string {
	if p := os.Getenv("WB_DEBUG_FILE"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "stderr"
		}
		dir = filepath.Join(home, ".local", "state")
	}
	dir = filepath.Join(dir, "wb")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "stderr"
	}
	return filepath.Join(dir, "debug.log")
}

func newLogger(path string) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		cfg.OutputPaths = []string{"stderr"}
		if l, err = cfg.Build(); err != nil {
			return zap.NewNop().Sugar()
		}
	}
	return l.Named("wb").Sugar()
}

func current() (*zap.SugaredLogger, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return logger, enabled
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	l, on := current()
	if !on {
		return
	}
	l.Debugf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	l, on := current()
	if !on {
		return
	}
	l.Debugw("timing", "name", name, "took", d)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	}
func LogEnterExit(name string) func() {
	l, on := current()
	if !on {
		return func() {}
	}
	l.Debugf("-> %s", name)
	start := time.Now()
	return func() {
		l.Debugf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	l, on := current()
	if !on {
		return
	}
	l.Debugw(name, "type", fmt.Sprintf("%T", v), "value", fmt.Sprintf("%+v", v))
}

// Sync flushes buffered log entries. Call before exit.
func Sync() {
	l, _ := current()
	_ = l.Sync()
}
