package telegram

import (
	"context"

	"github.com/flemzord/tgnotify/pkg/botapi"
	"github.com/flemzord/tgnotify/pkg/message"
)

// Send delivers msg through the bot it names (or the default bot).
//
// The destination is the message's own chat ID, else fallbackChatID. With
// neither, Send is a no-op and returns (nil, nil) without any network call.
//
// Text longer than message.MaxTextLength is sent as consecutive chunks; only
// the first chunk carries the reply markup, the response of the last chunk
// is returned and the first failing chunk aborts the rest. Messages carrying
// a local file are uploaded as multipart. All other messages go out in a
// single call, whatever their size.
func (t *Telegram) Send(ctx context.Context, msg message.Message, fallbackChatID string) (*botapi.Response, error) {
	route := msg.Route()
	chatID := route.ChatID
	if chatID == "" {
		chatID = fallbackChatID
	}
	if chatID == "" {
		return nil, nil
	}

	client, err := t.Bot(route.Bot)
	if err != nil {
		return nil, err
	}

	params := msg.Params()
	if params == nil {
		params = botapi.Params{}
	}
	params["chat_id"] = chatID
	method := msg.APIMethod()

	if u, ok := msg.(message.Uploadable); ok {
		if field, path := u.UploadFile(); path != "" {
			return client.Upload(ctx, method, params, field, path)
		}
	}

	if s, ok := msg.(message.Splittable); ok {
		if chunks := s.SplitContent(); len(chunks) > 1 {
			return sendChunks(ctx, client, method, params, chunks)
		}
	}

	return client.Call(ctx, method, params)
}

func sendChunks(ctx context.Context, client *botapi.Client, method string, params botapi.Params, chunks []string) (*botapi.Response, error) {
	var last *botapi.Response
	for i, chunk := range chunks {
		p := params.Clone()
		p["text"] = chunk
		if i > 0 {
			delete(p, "reply_markup")
		}

		resp, err := client.Call(ctx, method, p)
		if err != nil {
			return nil, err
		}
		last = resp
	}
	return last, nil
}

// Notifiable is a recipient that knows its own Telegram chat.
type Notifiable interface {
	// RouteTelegram returns the chat ID to use when the notification's
	// message does not name one.
	RouteTelegram(n Notification) string
}

// Notification renders itself as a Telegram message for a recipient.
type Notification interface {
	ToTelegram(to Notifiable) message.Message
}

// Channel delivers notifications to their recipients' chats.
type Channel struct {
	tg *Telegram
}

// NewChannel returns a notification channel sending through tg.
func NewChannel(tg *Telegram) *Channel {
	return &Channel{tg: tg}
}

// Send renders n for to and dispatches it. The recipient's route is only
// consulted when the message has no chat ID of its own. A nil message or
// an unresolved destination is a no-op.
func (c *Channel) Send(ctx context.Context, to Notifiable, n Notification) (*botapi.Response, error) {
	msg := n.ToTelegram(to)
	if msg == nil {
		return nil, nil
	}

	var fallback string
	if msg.Route().ChatID == "" && to != nil {
		fallback = to.RouteTelegram(n)
	}
	return c.tg.Send(ctx, msg, fallback)
}
