// Package logger holds the process-wide hclog root. Subsystems take a named
// child via Named so every line carries its origin.
package logger

import (
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	mu   sync.RWMutex
	root hclog.Logger = hclog.NewNullLogger()
)

// Initialize installs the root logger. level accepts hclog level names
// (trace, debug, info, warn, error); unknown values fall back to info.
func Initialize(name, level string) {
	parsed := hclog.LevelFromString(level)
	if parsed == hclog.NoLevel {
		parsed = hclog.Info
	}
	l := hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      parsed,
		Output:     os.Stderr,
		JSONFormat: os.Getenv("LOG_FORMAT") == "json",
	})
	mu.Lock()
	root = l
	mu.Unlock()
}

// Root returns the installed root logger.
func Root() hclog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Named returns a child logger for a subsystem.
func Named(name string) hclog.Logger {
	return Root().Named(name)
}

func Debug(msg string, args ...interface{}) { Root().Debug(msg, args...) }
func Info(msg string, args ...interface{})  { Root().Info(msg, args...) }
func Warn(msg string, args ...interface{})  { Root().Warn(msg, args...) }
func Error(msg string, args ...interface{}) { Root().Error(msg, args...) }
