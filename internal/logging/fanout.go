package logging

import (
	"context"
	"errors"
	"log/slog"
)

// fanout is a handler that sends each record to several handlers.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	r := make(fanout, len(f))
	for i, h := range f {
		r[i] = h.WithAttrs(attrs)
	}
	return r
}

func (f fanout) WithGroup(name string) slog.Handler {
	r := make(fanout, len(f))
	for i, h := range f {
		r[i] = h.WithGroup(name)
	}
	return r
}
