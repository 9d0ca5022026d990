// Package telegram dispatches messages built with package message through
// one or more named bots. It resolves destinations, chunks oversized text,
// and fans broadcasts out to many chats.
package telegram

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/flemzord/tgnotify/pkg/botapi"
)

// BotConfig is the identity of one named bot.
type BotConfig struct {
	Token string

	// ChatID is the bot's default destination, used by callers that have
	// no other destination (logging, CLI).
	ChatID  string
	TopicID string
}

// Config is the set of bots a Telegram dispatches through.
type Config struct {
	Bots    map[string]BotConfig
	Default string

	// BaseURL and Timeout apply to every bot. Zero values use the botapi
	// defaults.
	BaseURL string
	Timeout time.Duration
}

// Telegram resolves bot names to API clients and sends messages through
// them. Clients are created on first use and reused afterwards.
type Telegram struct {
	cfg        Config
	clientOpts []botapi.Option

	mu      sync.Mutex
	clients map[string]*botapi.Client

	// sleep waits between broadcast destinations. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Telegram.
type Option func(*Telegram)

// WithClientOptions appends options applied to every bot client, after the
// base URL and timeout from Config.
func WithClientOptions(opts ...botapi.Option) Option {
	return func(t *Telegram) {
		t.clientOpts = append(t.clientOpts, opts...)
	}
}

// New creates a Telegram for cfg. The configuration is copied and is not
// modified afterwards.
func New(cfg Config, opts ...Option) *Telegram {
	bots := make(map[string]BotConfig, len(cfg.Bots))
	for name, b := range cfg.Bots {
		bots[name] = b
	}
	cfg.Bots = bots

	t := &Telegram{
		cfg:     cfg,
		clients: make(map[string]*botapi.Client),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// DefaultBot returns the name of the default bot.
func (t *Telegram) DefaultBot() string {
	return t.cfg.Default
}

// BotNames returns the configured bot names, sorted.
func (t *Telegram) BotNames() []string {
	names := make([]string, 0, len(t.cfg.Bots))
	for name := range t.cfg.Bots {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// BotConfig returns the configuration of the named bot. An empty name
// selects the default bot.
func (t *Telegram) BotConfig(name string) (BotConfig, error) {
	if len(t.cfg.Bots) == 0 {
		return BotConfig{}, fmt.Errorf("%w: %w", ErrNoBots, botapi.ErrInvalidArgument)
	}
	if name == "" {
		name = t.cfg.Default
	}
	bc, ok := t.cfg.Bots[name]
	if !ok {
		return BotConfig{}, fmt.Errorf("%w: %w: %q", ErrUnknownBot, botapi.ErrInvalidArgument, name)
	}
	return bc, nil
}

// Bot returns the client for the named bot, creating it on first use. An
// empty name selects the default bot. Unknown names fail with
// ErrUnknownBot without any network activity.
func (t *Telegram) Bot(name string) (*botapi.Client, error) {
	if name == "" {
		name = t.cfg.Default
	}
	bc, err := t.BotConfig(name)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.clients[name]; ok {
		return c, nil
	}

	opts := append([]botapi.Option{
		botapi.WithBaseURL(t.cfg.BaseURL),
		botapi.WithTimeout(t.cfg.Timeout),
	}, t.clientOpts...)
	c := botapi.NewClient(bc.Token, opts...)
	t.clients[name] = c
	return c, nil
}

// Typing shows the "typing" action in chatID on the default bot.
func (t *Telegram) Typing(ctx context.Context, chatID string) (*botapi.Response, error) {
	return t.chatAction(ctx, chatID, botapi.ActionTyping)
}

// UploadingPhoto shows the "sending photo" action on the default bot.
func (t *Telegram) UploadingPhoto(ctx context.Context, chatID string) (*botapi.Response, error) {
	return t.chatAction(ctx, chatID, botapi.ActionUploadPhoto)
}

// UploadingDocument shows the "sending file" action on the default bot.
func (t *Telegram) UploadingDocument(ctx context.Context, chatID string) (*botapi.Response, error) {
	return t.chatAction(ctx, chatID, botapi.ActionUploadDocument)
}

// RecordingVideo shows the "recording video" action on the default bot.
func (t *Telegram) RecordingVideo(ctx context.Context, chatID string) (*botapi.Response, error) {
	return t.chatAction(ctx, chatID, botapi.ActionRecordVideo)
}

// RecordingVoice shows the "recording voice" action on the default bot.
func (t *Telegram) RecordingVoice(ctx context.Context, chatID string) (*botapi.Response, error) {
	return t.chatAction(ctx, chatID, botapi.ActionRecordVoice)
}

func (t *Telegram) chatAction(ctx context.Context, chatID string, action botapi.ChatAction) (*botapi.Response, error) {
	c, err := t.Bot("")
	if err != nil {
		return nil, err
	}
	return c.SendChatAction(ctx, chatID, action, nil)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
