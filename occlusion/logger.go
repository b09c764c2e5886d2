package occlusion

import (
	"context"
	"log/slog"
	"sync/atomic"

	"occlusion-engine/occluder"
)

// nopHandler is a slog.Handler that silently discards all log records.
// It is the default handler so that the culler produces no output unless
// a logger is configured with SetLogger.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the package logger. Access is lock-free via atomic.Pointer.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger for the culler and the occluder loaders.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-frame selection and whittling counts, duplicate ids
//   - [slog.LevelInfo]: configuration reloads
//   - [slog.LevelWarn]: unreadable configuration, skipped loader geometry
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
	occluder.SetLogger(l)
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
