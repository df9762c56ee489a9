// Package applog writes the per-component project log files. Lines use the
// "timestamp - LEVEL - message" format every front-end and test expects.
package applog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ccpm/pkg/config"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger appends formatted lines to a single log file. A Logger with an empty
// path discards everything, which covers the "no project yet" case without
// nil checks at every call site.
type Logger struct {
	mu   sync.Mutex
	path string
}

// New returns a Logger appending to path. The parent directory is created on
// first write.
func New(path string) *Logger {
	return &Logger{path: path}
}

// Discard returns a Logger that drops all output.
func Discard() *Logger {
	return &Logger{}
}

// Path returns the log file path, or "" for a discarding logger.
func (l *Logger) Path() string {
	return l.path
}

func (l *Logger) Info(format string, args ...any)    { l.write("INFO", format, args...) }
func (l *Logger) Warning(format string, args ...any) { l.write("WARNING", format, args...) }
func (l *Logger) Error(format string, args ...any)   { l.write("ERROR", format, args...) }
func (l *Logger) Debug(format string, args ...any)   { l.write("DEBUG", format, args...) }

func (l *Logger) write(level, format string, args ...any) {
	if l.path == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	line := fmt.Sprintf("%s - %s - %s\n", time.Now().Format(timeFormat), level, fmt.Sprintf(format, args...))
	f.WriteString(line)
}

// RegisterFile records a logger's file under category in the store's logs
// registry and persists when the registry changed. Discarding loggers are
// skipped.
func RegisterFile(store *config.Store, category string, log *Logger) {
	if log.Path() == "" {
		return
	}
	if Register(store.Config, category, filepath.Base(log.Path()), log.Path()) {
		if err := store.Save(); err != nil {
			log.Error("failed to register %s log in project configuration: %v", category, err)
		}
	}
}

// Register records a log file in the configuration's logs registry. The
// insert is idempotent: an existing entry for the category is left untouched.
// Returns true if the registry changed.
func Register(cfg *config.ProjectConfig, category, fileName, path string) bool {
	if cfg.Logs == nil {
		cfg.Logs = map[string]map[string]string{}
	}
	if _, ok := cfg.Logs[category]; ok {
		return false
	}
	cfg.Logs[category] = map[string]string{fileName: path}
	return true
}
