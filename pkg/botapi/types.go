package botapi

import (
	"encoding/json"
	"time"
)

// Response is the envelope returned by every Bot API method.
type Response struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result,omitempty"`
	Description string              `json:"description,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

// ResponseParameters contains information about why a request was unsuccessful.
type ResponseParameters struct {
	RetryAfter      int   `json:"retry_after,omitempty"`
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
}

// NotOK returns a synthetic failed response with an empty result.
func NotOK() *Response {
	return &Response{OK: false, Result: json.RawMessage(`[]`)}
}

// EmptyOK returns a synthetic successful response with an empty result.
func EmptyOK() *Response {
	return &Response{OK: true, Result: json.RawMessage(`[]`)}
}

// DecodeResult unmarshals the result payload into v.
func (r *Response) DecodeResult(v any) error {
	if len(r.Result) == 0 {
		return json.Unmarshal([]byte("null"), v)
	}
	return json.Unmarshal(r.Result, v)
}

// message decodes the result as a Message, or returns nil when it is not one.
func (r *Response) message() *Message {
	if r == nil || len(r.Result) == 0 || r.Result[0] != '{' {
		return nil
	}
	var m Message
	if err := json.Unmarshal(r.Result, &m); err != nil {
		return nil
	}
	return &m
}

// MessageID returns result.message_id, or 0.
func (r *Response) MessageID() int {
	if m := r.message(); m != nil {
		return m.MessageID
	}
	return 0
}

// Date returns result.date, or the zero time.
func (r *Response) Date() time.Time {
	if m := r.message(); m != nil && m.Date != 0 {
		return time.Unix(m.Date, 0)
	}
	return time.Time{}
}

// Chat returns result.chat, or nil.
func (r *Response) Chat() *Chat {
	if m := r.message(); m != nil && m.Chat.ID != 0 {
		return &m.Chat
	}
	return nil
}

// Text returns result.text, or "".
func (r *Response) Text() string {
	if m := r.message(); m != nil {
		return m.Text
	}
	return ""
}

// Update represents an incoming update from the Telegram Bot API.
type Update struct {
	UpdateID      int            `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	EditedMessage *Message       `json:"edited_message,omitempty"`
	ChannelPost   *Message       `json:"channel_post,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message represents a Telegram message.
type Message struct {
	MessageID       int       `json:"message_id"`
	From            *User     `json:"from,omitempty"`
	Chat            Chat      `json:"chat"`
	Date            int64     `json:"date"`
	Text            string    `json:"text,omitempty"`
	Caption         string    `json:"caption,omitempty"`
	Document        *Document `json:"document,omitempty"`
	Photo           []File    `json:"photo,omitempty"`
	Location        *Location `json:"location,omitempty"`
	MessageThreadID int       `json:"message_thread_id,omitempty"`
}

// Chat represents a Telegram chat.
type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	IsForum   bool   `json:"is_forum,omitempty"`
}

// User represents a Telegram user or bot.
type User struct {
	ID                      int64  `json:"id"`
	IsBot                   bool   `json:"is_bot"`
	FirstName               string `json:"first_name"`
	LastName                string `json:"last_name,omitempty"`
	Username                string `json:"username,omitempty"`
	CanJoinGroups           bool   `json:"can_join_groups,omitempty"`
	CanReadAllGroupMessages bool   `json:"can_read_all_group_messages,omitempty"`
	SupportsInlineQueries   bool   `json:"supports_inline_queries,omitempty"`
}

// CallbackQuery is an incoming callback from an inline keyboard button.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// Document represents a general file.
type Document struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileName     string `json:"file_name,omitempty"`
	MIMEType     string `json:"mime_type,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
}

// Location represents a point on the map.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// File represents a file ready to be downloaded.
type File struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileSize     int64  `json:"file_size,omitempty"`
	FilePath     string `json:"file_path,omitempty"`
}

// WebhookInfo describes the current webhook status.
type WebhookInfo struct {
	URL                  string   `json:"url"`
	HasCustomCertificate bool     `json:"has_custom_certificate"`
	PendingUpdateCount   int      `json:"pending_update_count"`
	IPAddress            string   `json:"ip_address,omitempty"`
	LastErrorDate        int64    `json:"last_error_date,omitempty"`
	LastErrorMessage     string   `json:"last_error_message,omitempty"`
	MaxConnections       int      `json:"max_connections,omitempty"`
	AllowedUpdates       []string `json:"allowed_updates,omitempty"`
}

// BotCommand is one entry of the bot's command menu.
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}
