package slogutil

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// WarningCounter wraps a handler and counts records at warn level or above,
// including records the wrapped handler filters out.
type WarningCounter struct {
	next  slog.Handler
	count *atomic.Int64
}

func NewWarningCounter(next slog.Handler) *WarningCounter {
	return &WarningCounter{next: next, count: new(atomic.Int64)}
}

func (c *WarningCounter) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn || c.next.Enabled(ctx, level)
}

func (c *WarningCounter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		c.count.Add(1)
	}
	if !c.next.Enabled(ctx, r.Level) {
		return nil
	}
	return c.next.Handle(ctx, r)
}

func (c *WarningCounter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &WarningCounter{next: c.next.WithAttrs(attrs), count: c.count}
}

func (c *WarningCounter) WithGroup(name string) slog.Handler {
	return &WarningCounter{next: c.next.WithGroup(name), count: c.count}
}

// Count returns the number of warnings seen so far.
func (c *WarningCounter) Count() int {
	return int(c.count.Load())
}
