package logger

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shuldan/kevent/pkg/contracts"
)

type sLogger struct {
	handler slog.Handler
}

func (l *sLogger) Trace(msg string, args ...any) { l.log(levelTrace, msg, args) }
func (l *sLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *sLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args) }
func (l *sLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args) }
func (l *sLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }
func (l *sLogger) Critical(msg string, args ...any) { l.log(levelCritical, msg, args) }

func (l *sLogger) With(args ...any) contracts.Logger {
	return &sLogger{handler: slog.New(l.handler).With(args...).Handler()}
}

// log records the caller of the exported method as the source.
func (l *sLogger) log(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	if !l.handler.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.handler.Handle(ctx, r)
}
