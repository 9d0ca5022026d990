package message

import "encoding/json"

// defaultColumns is the number of buttons per row before a keyboard wraps.
const defaultColumns = 2

// ReplyMarkup is any keyboard or reply interface that can be attached to a
// message as reply_markup. A nil map means nothing is attached.
type ReplyMarkup interface {
	Markup() map[string]any
}

// Button is one inline keyboard button.
type Button struct {
	Text   string
	fields map[string]any
}

func newButton(text, key string, value any) Button {
	return Button{Text: text, fields: map[string]any{key: value}}
}

// URLButton opens url when pressed.
func URLButton(text, url string) Button {
	return newButton(text, "url", url)
}

// CallbackButton sends data back to the bot in a callback query.
func CallbackButton(text, data string) Button {
	return newButton(text, "callback_data", data)
}

// WebAppButton launches a Web App.
func WebAppButton(text, webAppURL string) Button {
	return newButton(text, "web_app", map[string]any{"url": webAppURL})
}

// LoginURLButton authorizes the user on an external site.
func LoginURLButton(text, url string) Button {
	return newButton(text, "login_url", map[string]any{"url": url})
}

// SwitchInlineQueryButton prompts the user to pick a chat and inserts the
// bot's username and query in the input field.
func SwitchInlineQueryButton(text, query string) Button {
	return newButton(text, "switch_inline_query", query)
}

// SwitchInlineQueryCurrentChatButton inserts the bot's username and query
// in the current chat's input field.
func SwitchInlineQueryCurrentChatButton(text, query string) Button {
	return newButton(text, "switch_inline_query_current_chat", query)
}

// SwitchInlineQueryChosenChatButton prompts the user to pick a chat of the
// allowed types. options follows the SwitchInlineQueryChosenChat object.
func SwitchInlineQueryChosenChatButton(text string, options map[string]any) Button {
	if options == nil {
		options = map[string]any{}
	}
	return newButton(text, "switch_inline_query_chosen_chat", options)
}

// CopyTextButton copies textToCopy to the clipboard.
func CopyTextButton(text, textToCopy string) Button {
	return newButton(text, "copy_text", map[string]any{"text": textToCopy})
}

// PayButton is a payment button; it must be the first button of the first row.
func PayButton(text string) Button {
	return newButton(text, "pay", true)
}

// Markup renders the button as an InlineKeyboardButton object.
func (b Button) Markup() map[string]any {
	out := make(map[string]any, len(b.fields)+1)
	out["text"] = b.Text
	for k, v := range b.fields {
		out[k] = v
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (b Button) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Markup())
}

// grid lays buttons out in rows, wrapping after a fixed number of columns.
type grid[T any] struct {
	rows    [][]T
	columns int
	newRow  bool
}

func (g *grid[T]) add(v T) {
	if len(g.rows) == 0 || g.newRow {
		g.rows = append(g.rows, nil)
		g.newRow = false
	}
	last := len(g.rows) - 1
	g.rows[last] = append(g.rows[last], v)

	columns := g.columns
	if columns <= 0 {
		columns = defaultColumns
	}
	if len(g.rows[last]) >= columns {
		g.newRow = true
	}
}

// row starts a new row for the next button. Consecutive calls never
// produce empty rows.
func (g *grid[T]) row() {
	if len(g.rows) > 0 {
		g.newRow = true
	}
}

// InlineKeyboard is a keyboard attached below a message.
type InlineKeyboard struct {
	grid[Button]
}

// NewInlineKeyboard returns an empty inline keyboard wrapping after two
// buttons per row.
func NewInlineKeyboard() *InlineKeyboard {
	return &InlineKeyboard{}
}

// Columns sets how many buttons fit on a row before it wraps.
func (k *InlineKeyboard) Columns(n int) *InlineKeyboard {
	k.columns = n
	return k
}

// Button appends b to the current row.
func (k *InlineKeyboard) Button(b Button) *InlineKeyboard {
	k.add(b)
	return k
}

// URL appends a URL button.
func (k *InlineKeyboard) URL(text, url string) *InlineKeyboard {
	return k.Button(URLButton(text, url))
}

// Callback appends a callback button.
func (k *InlineKeyboard) Callback(text, data string) *InlineKeyboard {
	return k.Button(CallbackButton(text, data))
}

// WebApp appends a Web App button.
func (k *InlineKeyboard) WebApp(text, webAppURL string) *InlineKeyboard {
	return k.Button(WebAppButton(text, webAppURL))
}

// Row forces the next button onto a new row.
func (k *InlineKeyboard) Row() *InlineKeyboard {
	k.row()
	return k
}

// IsEmpty reports whether the keyboard has no buttons.
func (k *InlineKeyboard) IsEmpty() bool {
	return k == nil || len(k.rows) == 0
}

// Markup implements ReplyMarkup.
func (k *InlineKeyboard) Markup() map[string]any {
	if k == nil {
		return nil
	}
	rows := make([][]map[string]any, 0, len(k.rows))
	for _, r := range k.rows {
		row := make([]map[string]any, 0, len(r))
		for _, b := range r {
			row = append(row, b.Markup())
		}
		rows = append(rows, row)
	}
	return map[string]any{"inline_keyboard": rows}
}

// MarshalJSON implements json.Marshaler.
func (k *InlineKeyboard) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Markup())
}

// ReplyKeyboard replaces the user's keyboard with custom buttons.
type ReplyKeyboard struct {
	grid[map[string]any]

	noResize    bool
	oneTime     bool
	placeholder string
	selective   bool
	persistent  bool
}

// NewReplyKeyboard returns an empty reply keyboard. Keyboards are resized
// to fit their buttons unless Resize(false) is called.
func NewReplyKeyboard() *ReplyKeyboard {
	return &ReplyKeyboard{}
}

// Columns sets how many buttons fit on a row before it wraps.
func (k *ReplyKeyboard) Columns(n int) *ReplyKeyboard {
	k.columns = n
	return k
}

// Button appends a plain text button.
func (k *ReplyKeyboard) Button(text string) *ReplyKeyboard {
	k.add(map[string]any{"text": text})
	return k
}

// RequestContact appends a button that shares the user's phone number.
func (k *ReplyKeyboard) RequestContact(text string) *ReplyKeyboard {
	k.add(map[string]any{"text": text, "request_contact": true})
	return k
}

// RequestLocation appends a button that shares the user's location.
func (k *ReplyKeyboard) RequestLocation(text string) *ReplyKeyboard {
	k.add(map[string]any{"text": text, "request_location": true})
	return k
}

// Row forces the next button onto a new row.
func (k *ReplyKeyboard) Row() *ReplyKeyboard {
	k.row()
	return k
}

// Resize toggles resize_keyboard.
func (k *ReplyKeyboard) Resize(resize bool) *ReplyKeyboard {
	k.noResize = !resize
	return k
}

// OneTime hides the keyboard after it is used.
func (k *ReplyKeyboard) OneTime(oneTime bool) *ReplyKeyboard {
	k.oneTime = oneTime
	return k
}

// Placeholder sets the input field placeholder.
func (k *ReplyKeyboard) Placeholder(s string) *ReplyKeyboard {
	k.placeholder = s
	return k
}

// Selective shows the keyboard to specific users only.
func (k *ReplyKeyboard) Selective(selective bool) *ReplyKeyboard {
	k.selective = selective
	return k
}

// Persistent keeps the keyboard shown when the regular keyboard is hidden.
func (k *ReplyKeyboard) Persistent(persistent bool) *ReplyKeyboard {
	k.persistent = persistent
	return k
}

// IsEmpty reports whether the keyboard has no buttons.
func (k *ReplyKeyboard) IsEmpty() bool {
	return k == nil || len(k.rows) == 0
}

// Markup implements ReplyMarkup. The keyboard field is omitted when no
// buttons were added.
func (k *ReplyKeyboard) Markup() map[string]any {
	if k == nil {
		return nil
	}
	out := map[string]any{}
	if len(k.rows) > 0 {
		out["keyboard"] = k.rows
	}
	if !k.noResize {
		out["resize_keyboard"] = true
	}
	if k.oneTime {
		out["one_time_keyboard"] = true
	}
	if k.placeholder != "" {
		out["input_field_placeholder"] = k.placeholder
	}
	if k.selective {
		out["selective"] = true
	}
	if k.persistent {
		out["is_persistent"] = true
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (k *ReplyKeyboard) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Markup())
}

// ReplyKeyboardRemove removes a custom reply keyboard.
type ReplyKeyboardRemove struct {
	Selective bool
}

// Markup implements ReplyMarkup.
func (r ReplyKeyboardRemove) Markup() map[string]any {
	out := map[string]any{"remove_keyboard": true}
	if r.Selective {
		out["selective"] = true
	}
	return out
}

// ForceReply shows a reply interface to the user.
type ForceReply struct {
	Placeholder string
	Selective   bool
}

// Markup implements ReplyMarkup.
func (f ForceReply) Markup() map[string]any {
	out := map[string]any{"force_reply": true}
	if f.Placeholder != "" {
		out["input_field_placeholder"] = f.Placeholder
	}
	if f.Selective {
		out["selective"] = true
	}
	return out
}
