package telegram

import (
	"context"
	"time"

	"github.com/flemzord/tgnotify/pkg/botapi"
	"github.com/flemzord/tgnotify/pkg/message"
)

// Result is the outcome of a broadcast for one destination. Failed
// destinations carry a synthetic not-ok Response along with Err.
type Result struct {
	ChatID   string
	Response *botapi.Response
	Err      error
}

// OK reports whether the destination was reached.
func (r Result) OK() bool {
	return r.Err == nil
}

// Broadcast sends one text message to several chats, one after another.
type Broadcast struct {
	tg        *Telegram
	chatIDs   []string
	bot       string
	text      string
	parseMode message.ParseMode
	silent    bool
	protected bool
	keyboard  message.ReplyMarkup
	delay     time.Duration
	onFailure func(chatID string, err error)
}

// Broadcast starts a broadcast to chatIDs.
func (t *Telegram) Broadcast(chatIDs ...string) *Broadcast {
	return &Broadcast{
		tg:        t,
		chatIDs:   append([]string(nil), chatIDs...),
		parseMode: message.HTML,
	}
}

// To appends destinations.
func (b *Broadcast) To(chatIDs ...string) *Broadcast {
	b.chatIDs = append(b.chatIDs, chatIDs...)
	return b
}

// Bot sends through the named bot instead of the default one.
func (b *Broadcast) Bot(name string) *Broadcast {
	b.bot = name
	return b
}

// Text sets the message body, keeping the current parse mode.
func (b *Broadcast) Text(text string) *Broadcast {
	b.text = text
	return b
}

// HTML sets an HTML body.
func (b *Broadcast) HTML(text string) *Broadcast {
	b.text = text
	b.parseMode = message.HTML
	return b
}

// Markdown sets a MarkdownV2 body.
func (b *Broadcast) Markdown(text string) *Broadcast {
	b.text = text
	b.parseMode = message.MarkdownV2
	return b
}

// Silent disables notification sounds.
func (b *Broadcast) Silent() *Broadcast {
	b.silent = true
	return b
}

// Protected forbids forwarding and saving.
func (b *Broadcast) Protected() *Broadcast {
	b.protected = true
	return b
}

// Keyboard attaches markup to every message.
func (b *Broadcast) Keyboard(markup message.ReplyMarkup) *Broadcast {
	b.keyboard = markup
	return b
}

// RateLimit waits d between consecutive destinations.
func (b *Broadcast) RateLimit(d time.Duration) *Broadcast {
	b.delay = d
	return b
}

// OnFailure registers fn, called once for every destination that fails.
func (b *Broadcast) OnFailure(fn func(chatID string, err error)) *Broadcast {
	b.onFailure = fn
	return b
}

// Send delivers the message to every destination in order and returns one
// Result per destination. A failing destination does not stop the
// broadcast.
func (b *Broadcast) Send(ctx context.Context) []Result {
	results := make([]Result, 0, len(b.chatIDs))
	if len(b.chatIDs) == 0 {
		return results
	}

	opts := botapi.Params{"parse_mode": string(b.parseMode)}.
		Add("disable_notification", b.silent).
		Add("protect_content", b.protected)
	if b.keyboard != nil {
		if markup := b.keyboard.Markup(); markup != nil {
			opts["reply_markup"] = markup
		}
	}

	for i, chatID := range b.chatIDs {
		resp, err := b.sendOne(ctx, chatID, opts)
		if err != nil {
			if b.onFailure != nil {
				b.onFailure(chatID, err)
			}
			resp = botapi.NotOK()
		}
		results = append(results, Result{ChatID: chatID, Response: resp, Err: err})

		if b.delay > 0 && i < len(b.chatIDs)-1 {
			// A cancelled wait surfaces through the next call's error.
			_ = b.tg.sleep(ctx, b.delay)
		}
	}
	return results
}

func (b *Broadcast) sendOne(ctx context.Context, chatID string, opts botapi.Params) (*botapi.Response, error) {
	client, err := b.tg.Bot(b.bot)
	if err != nil {
		return nil, err
	}
	return client.SendMessage(ctx, chatID, b.text, opts)
}
