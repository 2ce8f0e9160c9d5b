// Package logs builds the slog loggers used across the binaries so that
// every component reports events with the same handler and level rules.
package logs

import (
	"log/slog"
	"os"
	"strings"
)

func GetLoggerFromLevel(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// GetLoggerFromString maps a config value (DEBUG, INFO, WARN, ERROR) to a
// logger. Unknown values fall back to INFO.
func GetLoggerFromString(level string) *slog.Logger {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return GetLoggerFromLevel(slog.LevelDebug)
	case "WARN":
		return GetLoggerFromLevel(slog.LevelWarn)
	case "ERROR":
		return GetLoggerFromLevel(slog.LevelError)
	default:
		return GetLoggerFromLevel(slog.LevelInfo)
	}
}
