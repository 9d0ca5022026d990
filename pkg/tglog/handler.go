// Package tglog forwards log records to a Telegram chat through a slog
// handler. Delivery is best effort: failures are swallowed so logging can
// never break the host application.
package tglog

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/flemzord/tgnotify/pkg/botapi"
)

// Levels beyond the four slog defines, for callers that log with a finer
// severity scale.
const (
	LevelNotice    slog.Level = 2
	LevelCritical  slog.Level = 12
	LevelAlert     slog.Level = 16
	LevelEmergency slog.Level = 20
)

const (
	maxMessageRunes = 4096
	maxErrorRunes   = 2000
	truncatedSuffix = "...</b>"
)

// SilentSender delivers a Bot API call and reports only success.
// *botapi.Client implements it.
type SilentSender interface {
	CallSilent(ctx context.Context, method string, params botapi.Params) bool
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	ChatID  string
	TopicID string

	// Level is the minimum level forwarded. Defaults to slog.LevelError.
	Level slog.Leveler

	AppName     string
	Environment string

	// RatePerSec caps deliveries per second; records over the cap are
	// dropped. Zero means unlimited.
	RatePerSec float64
}

// Handler is a slog.Handler that posts each record as an HTML message.
type Handler struct {
	sender  SilentSender
	opts    HandlerOptions
	limiter *rate.Limiter
	attrs   []slog.Attr
	group   string
}

// NewHandler returns a handler sending through sender.
func NewHandler(sender SilentSender, opts HandlerOptions) *Handler {
	if opts.Level == nil {
		opts.Level = slog.LevelError
	}
	h := &Handler{sender: sender, opts: opts}
	if opts.RatePerSec > 0 {
		burst := int(math.Ceil(opts.RatePerSec))
		h.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	return h
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.opts.ChatID != "" && level >= h.opts.Level.Level()
}

// Handle implements slog.Handler. It always returns nil.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if h.opts.ChatID == "" || r.Level < h.opts.Level.Level() {
		return nil
	}
	if h.limiter != nil && !h.limiter.Allow() {
		return nil
	}

	params := botapi.Params{
		"chat_id":    h.opts.ChatID,
		"text":       h.format(r),
		"parse_mode": "HTML",
	}.Add("message_thread_id", h.opts.TopicID)

	// The record's context may already be cancelled during shutdown; the
	// client timeout still bounds the call.
	h.sender.CallSilent(context.WithoutCancel(ctx), "sendMessage", params)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		h2.attrs = append(h2.attrs, h.qualify(a))
	}
	return &h2
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	if h.group != "" {
		h2.group = h.group + "." + name
	} else {
		h2.group = name
	}
	return &h2
}

func (h *Handler) qualify(a slog.Attr) slog.Attr {
	if h.group != "" {
		a.Key = h.group + "." + a.Key
	}
	return a
}

func (h *Handler) format(r slog.Record) string {
	var b strings.Builder

	name, emoji := levelLabel(r.Level)
	fmt.Fprintf(&b, "%s <b>%s</b>\n\n", emoji, name)
	fmt.Fprintf(&b, "<b>App:</b> %s\n", html.EscapeString(orDefault(h.opts.AppName, "app")))
	fmt.Fprintf(&b, "<b>Env:</b> %s\n\n", html.EscapeString(orDefault(h.opts.Environment, "production")))
	b.WriteString("<b>Message:</b>\n")
	b.WriteString(html.EscapeString(r.Message))

	var errVal error
	var fields []string
	collect := func(a slog.Attr) {
		a.Value = a.Value.Resolve()
		if err, ok := a.Value.Any().(error); ok && errVal == nil {
			errVal = err
			return
		}
		fields = append(fields, fmt.Sprintf("<b>%s:</b> %s", html.EscapeString(a.Key), html.EscapeString(a.Value.String())))
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(h.qualify(a))
		return true
	})

	if len(fields) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(fields, "\n"))
	}

	if errVal != nil {
		detail := errVal.Error()
		if utf8.RuneCountInString(detail) > maxErrorRunes {
			detail = string([]rune(detail)[:maxErrorRunes]) + "..."
		}
		fmt.Fprintf(&b, "\n\n<b>Error:</b> %s\n\n<pre>%s</pre>",
			html.EscapeString(fmt.Sprintf("%T", errVal)), html.EscapeString(detail))
	}

	return truncate(b.String())
}

// truncate bounds text to a single message.
func truncate(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageRunes {
		return text
	}
	keep := maxMessageRunes - utf8.RuneCountInString(truncatedSuffix)
	return string([]rune(text)[:keep]) + truncatedSuffix
}

func levelLabel(l slog.Level) (string, string) {
	switch {
	case l >= LevelEmergency:
		return "EMERGENCY", "⛔"
	case l >= LevelAlert:
		return "ALERT", "🚨"
	case l >= LevelCritical:
		return "CRITICAL", "🔥"
	case l >= slog.LevelError:
		return "ERROR", "🔴"
	case l >= slog.LevelWarn:
		return "WARNING", "⚠️"
	case l >= LevelNotice:
		return "NOTICE", "📋"
	case l >= slog.LevelInfo:
		return "INFO", "ℹ️"
	default:
		return "DEBUG", "🔍"
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
