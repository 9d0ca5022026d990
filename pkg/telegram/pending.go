package telegram

import (
	"context"

	"github.com/flemzord/tgnotify/pkg/botapi"
	"github.com/flemzord/tgnotify/pkg/message"
)

// PendingMessage builds a text message to one chat fluently.
type PendingMessage struct {
	tg  *Telegram
	msg message.Text
}

// Message starts a text message to chatID.
func (t *Telegram) Message(chatID string) *PendingMessage {
	return &PendingMessage{
		tg:  t,
		msg: message.Text{Options: message.Options{ChatID: chatID}, ParseMode: message.HTML},
	}
}

// Text sets the body, keeping the current parse mode.
func (p *PendingMessage) Text(text string) *PendingMessage {
	p.msg.Body = text
	return p
}

// HTML sets an HTML body.
func (p *PendingMessage) HTML(text string) *PendingMessage {
	p.msg.Body = text
	p.msg.ParseMode = message.HTML
	return p
}

// Markdown sets a MarkdownV2 body.
func (p *PendingMessage) Markdown(text string) *PendingMessage {
	p.msg.Body = text
	p.msg.ParseMode = message.MarkdownV2
	return p
}

// Silent disables the notification sound.
func (p *PendingMessage) Silent() *PendingMessage {
	p.msg.Silent = true
	return p
}

// Protected forbids forwarding and saving.
func (p *PendingMessage) Protected() *PendingMessage {
	p.msg.Protected = true
	return p
}

// DisablePreview turns off link previews.
func (p *PendingMessage) DisablePreview() *PendingMessage {
	p.msg.DisablePreview = true
	return p
}

// Keyboard attaches reply markup.
func (p *PendingMessage) Keyboard(markup message.ReplyMarkup) *PendingMessage {
	p.msg.Keyboard = markup
	return p
}

// ReplyTo makes the message a reply to messageID.
func (p *PendingMessage) ReplyTo(messageID int) *PendingMessage {
	p.msg.ReplyTo = messageID
	return p
}

// Topic posts into a forum topic.
func (p *PendingMessage) Topic(topicID string) *PendingMessage {
	p.msg.TopicID = topicID
	return p
}

// Bot sends through the named bot instead of the default one.
func (p *PendingMessage) Bot(name string) *PendingMessage {
	p.msg.Bot = name
	return p
}

// SendWhen clears the body when cond is false, turning Send into a no-op.
func (p *PendingMessage) SendWhen(cond bool) *PendingMessage {
	if !cond {
		p.msg.Body = ""
	}
	return p
}

// Send delivers the message. An empty body returns a successful empty
// response without calling the API.
func (p *PendingMessage) Send(ctx context.Context) (*botapi.Response, error) {
	if p.msg.Body == "" {
		return botapi.EmptyOK(), nil
	}
	resp, err := p.tg.Send(ctx, &p.msg, "")
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return botapi.EmptyOK(), nil
	}
	return resp, nil
}
