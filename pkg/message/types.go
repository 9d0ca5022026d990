// Package message defines the outbound messages understood by the Telegram
// Bot API: text, media, locations, polls and the keyboards attached to them.
// Every builder renders itself into the parameter map a Bot API method
// expects, omitting unset optional fields.
package message

import "github.com/flemzord/tgnotify/pkg/botapi"

// ParseMode selects how Telegram interprets entities in text and captions.
type ParseMode string

// Supported parse modes.
const (
	HTML       ParseMode = "HTML"
	MarkdownV2 ParseMode = "MarkdownV2"
	Markdown   ParseMode = "Markdown"
)

// orDefault returns m, or HTML when m is unset.
func (m ParseMode) orDefault() ParseMode {
	if m == "" {
		return HTML
	}
	return m
}

// Route carries the per-message destination overrides. Empty fields fall
// back to whatever the dispatcher resolves.
type Route struct {
	ChatID  string
	TopicID string
	Bot     string
}

// Message is an outbound message ready to be dispatched.
type Message interface {
	// APIMethod returns the Bot API method that sends this message.
	APIMethod() string

	// Params renders the message as Bot API parameters.
	Params() botapi.Params

	// Route returns the destination overrides carried by the message.
	Route() Route
}

// Uploadable is a Message that may carry a local file. UploadFile returns
// the multipart field and the file path; an empty path means the message is
// sent as plain JSON.
type Uploadable interface {
	Message
	UploadFile() (field, path string)
}

// Splittable is a Message whose text body may exceed MaxTextLength and
// must be delivered in several chunks under the "text" parameter.
type Splittable interface {
	Message
	SplitContent() []string
}

// Options holds the delivery settings shared by every message type.
type Options struct {
	ChatID  string
	TopicID string
	Bot     string

	// Silent sends the message without a notification sound.
	Silent bool

	// Protected forbids forwarding and saving of the message content.
	Protected bool

	// ReplyTo is the message_id this message replies to.
	ReplyTo int

	Keyboard ReplyMarkup
}

// Route implements Message.
func (o Options) Route() Route {
	return Route{ChatID: o.ChatID, TopicID: o.TopicID, Bot: o.Bot}
}

// apply writes the shared settings into p.
func (o Options) apply(p botapi.Params) botapi.Params {
	p.Add("chat_id", o.ChatID).
		Add("message_thread_id", o.TopicID).
		Add("disable_notification", o.Silent).
		Add("protect_content", o.Protected)
	if o.ReplyTo != 0 {
		p["reply_parameters"] = map[string]any{"message_id": o.ReplyTo}
	}
	if o.Keyboard != nil {
		if markup := o.Keyboard.Markup(); markup != nil {
			p["reply_markup"] = markup
		}
	}
	return p
}
