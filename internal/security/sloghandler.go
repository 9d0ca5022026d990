package security

import (
	"context"
	"log/slog"
	"strings"
)

// secretKeys are attribute keys whose value is hidden whatever it holds.
var secretKeys = map[string]bool{
	"token":        true,
	"bot_token":    true,
	"secret":       true,
	"secret_token": true,
}

// RedactingHandler sits in front of the stderr and chat outputs of the
// CLI logger. It rewrites each record so neither output sees a bot token
// or the webhook secret, whether it arrives in the message, an attribute
// value, an error string or under a secret-named key.
type RedactingHandler struct {
	next slog.Handler
	r    *Redactor
}

var _ slog.Handler = (*RedactingHandler)(nil)

// NewRedactingHandler wraps next with r.
func NewRedactingHandler(next slog.Handler, r *Redactor) *RedactingHandler {
	return &RedactingHandler{next: next, r: r}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.r.Redact(rec.Message), rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.r.Attr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = h.r.Attr(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(clean), r: h.r}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name), r: h.r}
}

// Attr returns a with secrets removed. Values under a secret-named key are
// replaced outright; errors and other values are flattened to their string
// form only when that form contained a secret.
func (r *Redactor) Attr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if secretKeys[strings.ToLower(a.Key)] && a.Value.Kind() != slog.KindGroup {
		if a.Value.String() != "" {
			a.Value = slog.StringValue(RedactPlaceholder)
		}
		return a
	}

	switch a.Value.Kind() {
	case slog.KindString:
		a.Value = slog.StringValue(r.Redact(a.Value.String()))
	case slog.KindGroup:
		group := a.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, ga := range group {
			clean[i] = r.Attr(ga)
		}
		a.Value = slog.GroupValue(clean...)
	case slog.KindAny:
		s := a.Value.String()
		if red := r.Redact(s); red != s {
			a.Value = slog.StringValue(red)
		}
	}
	return a
}
