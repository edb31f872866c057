package regionarena

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with region-arena-specific context.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. If handler is nil, it
// uses a text handler writing to stderr at Info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger returns a Logger that discards all output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

func (l *Logger) logRegionReserved(idx int, bytes int) {
	if l == nil {
		return
	}
	l.Info("region reserved", "region", idx, "bytes", bytes)
}

func (l *Logger) logReservationLost(idx int) {
	if l == nil {
		return
	}
	l.Debug("lost region reservation race, adopting winner", "region", idx)
}

func (l *Logger) logClaimRolledBack(idx int, blocks int) {
	if l == nil {
		return
	}
	l.Debug("rolled back claim after reservation failure", "region", idx, "blocks", blocks)
}

func (l *Logger) logCommitFailed(idx, bitidx int, err error) {
	if l == nil {
		return
	}
	l.Warn("commit failed after successful claim, tolerating per documented behavior",
		"region", idx, "bit", bitidx, "error", err)
}

func (l *Logger) logInvalidRelease(id ID, reason string) {
	if l == nil {
		return
	}
	l.Debug("ignoring invalid release", "id", uint64(id), "reason", reason)
}
