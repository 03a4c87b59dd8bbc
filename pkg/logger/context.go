package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With attaches request-scoped fields (request_id, user_id, role) to ctx.
// Every *Context logging call made with the returned context carries them,
// whichever *slog.Logger is used.
func With(ctx context.Context, fields ...any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	attrs := append(Fields(ctx), argsToAttrs(fields)...)
	return context.WithValue(ctx, ctxKey{}, attrs)
}

// Fields returns a copy of the fields stored by With.
func Fields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	out := make([]slog.Attr, len(attrs))
	copy(out, attrs)
	return out
}

// From returns the process logger bound to the fields in ctx.
func From(ctx context.Context) *slog.Logger {
	l := LoggerWrapper()
	attrs := Fields(ctx)
	if len(attrs) == 0 {
		return l
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return l.With(args...)
}

func argsToAttrs(args []any) []slog.Attr {
	var r slog.Record
	r.Add(args...)
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	return attrs
}

// contextHandler adds the fields stored by With to each record.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := Fields(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}
