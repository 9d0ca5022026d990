package message

import (
	"fmt"

	"github.com/flemzord/tgnotify/pkg/botapi"
)

// Text is a plain text message sent with sendMessage.
type Text struct {
	Options

	Body string

	// ParseMode defaults to HTML.
	ParseMode ParseMode

	DisablePreview bool
}

// NewText returns a text message addressed to chatID.
func NewText(chatID, body string) *Text {
	return &Text{Options: Options{ChatID: chatID}, Body: body}
}

// APIMethod implements Message.
func (t *Text) APIMethod() string { return "sendMessage" }

// Params implements Message.
func (t *Text) Params() botapi.Params {
	p := botapi.Params{}.
		Add("text", t.Body).
		Add("parse_mode", string(t.ParseMode.orDefault())).
		Add("disable_web_page_preview", t.DisablePreview)
	return t.apply(p)
}

// SplitContent implements Splittable.
func (t *Text) SplitContent() []string {
	return SplitText(t.Body)
}

// Line appends s on a new line.
func (t *Text) Line(s string) *Text {
	if t.Body != "" {
		t.Body += "\n"
	}
	t.Body += s
	return t
}

// Bold appends s as a bold line.
func (t *Text) Bold(s string) *Text { return t.Line("<b>" + s + "</b>") }

// Italic appends s as an italic line.
func (t *Text) Italic(s string) *Text { return t.Line("<i>" + s + "</i>") }

// Underline appends s as an underlined line.
func (t *Text) Underline(s string) *Text { return t.Line("<u>" + s + "</u>") }

// Strikethrough appends s as a struck-through line.
func (t *Text) Strikethrough(s string) *Text { return t.Line("<s>" + s + "</s>") }

// Code appends s as an inline code line.
func (t *Text) Code(s string) *Text { return t.Line("<code>" + s + "</code>") }

// Pre appends s as a preformatted block, highlighted as language when set.
func (t *Text) Pre(s, language string) *Text {
	if language != "" {
		return t.Line(fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`, language, s))
	}
	return t.Line("<pre><code>" + s + "</code></pre>")
}

// Link appends an anchor pointing to url.
func (t *Text) Link(s, url string) *Text {
	return t.Line(fmt.Sprintf(`<a href="%s">%s</a>`, url, s))
}

// Spoiler appends s hidden behind a spoiler.
func (t *Text) Spoiler(s string) *Text { return t.Line("<tg-spoiler>" + s + "</tg-spoiler>") }

// Quote appends s as a block quote.
func (t *Text) Quote(s string) *Text { return t.Line("<blockquote>" + s + "</blockquote>") }
