package logger

import (
	"log/slog"
	"strings"

	"github.com/shuldan/kevent/pkg/errors"
)

const (
	levelTrace    = slog.LevelDebug - 4
	levelCritical = slog.LevelError + 4
)

var newLoggerCode = errors.WithPrefix("LOGGER")

var ErrUnknownLevel = newLoggerCode().New("unknown log level {{.level}}")

const (
	ansiReset   = "\033[0m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	ansiCyan    = "\033[36m"
	ansiAlarmed = "\033[41m\033[37m"
)

func levelName(level slog.Level) string {
	switch level {
	case levelTrace:
		return "TRACE"
	case levelCritical:
		return "CRITICAL"
	}
	return level.String()
}

func levelColor(level slog.Level) string {
	switch {
	case level >= levelCritical:
		return ansiAlarmed
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo:
		return ansiGreen
	case level >= slog.LevelDebug:
		return ansiBlue
	}
	return ansiCyan
}

// replaceLevel prints the custom levels by name in JSON output.
func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok {
		return slog.String(slog.LevelKey, levelName(level))
	}
	return a
}

// ParseLevel accepts the names printed by the handlers, case-insensitively.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE":
		return levelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "CRITICAL":
		return levelCritical, nil
	}
	return slog.LevelInfo, ErrUnknownLevel.WithDetail("level", name)
}
