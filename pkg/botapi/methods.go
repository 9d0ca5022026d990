package botapi

import (
	"context"
	"fmt"
)

// DefaultParseMode is applied to text and captions unless overridden.
const DefaultParseMode = "HTML"

// ChatAction is a status shown to chat members via sendChatAction.
type ChatAction string

// Chat actions understood by the Bot API.
const (
	ActionTyping          ChatAction = "typing"
	ActionUploadPhoto     ChatAction = "upload_photo"
	ActionRecordVideo     ChatAction = "record_video"
	ActionUploadVideo     ChatAction = "upload_video"
	ActionRecordVoice     ChatAction = "record_voice"
	ActionUploadVoice     ChatAction = "upload_voice"
	ActionUploadDocument  ChatAction = "upload_document"
	ActionChooseSticker   ChatAction = "choose_sticker"
	ActionFindLocation    ChatAction = "find_location"
	ActionRecordVideoNote ChatAction = "record_video_note"
	ActionUploadVideoNote ChatAction = "upload_video_note"
)

// GetMe returns the bot's user information.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	resp, err := c.Call(ctx, "getMe", nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := resp.DecodeResult(&user); err != nil {
		return nil, fmt.Errorf("%w: getMe: %v", ErrDecode, err)
	}
	return &user, nil
}

// SetWebhook configures the webhook URL for receiving updates.
func (c *Client) SetWebhook(ctx context.Context, url, secretToken string, opts Params) (*Response, error) {
	params := Params{"url": url}.Add("secret_token", secretToken)
	return c.Call(ctx, "setWebhook", params.With(opts))
}

// DeleteWebhook removes the current webhook integration.
func (c *Client) DeleteWebhook(ctx context.Context, dropPendingUpdates bool, opts Params) (*Response, error) {
	params := Params{"drop_pending_updates": dropPendingUpdates}
	return c.Call(ctx, "deleteWebhook", params.With(opts))
}

// GetWebhookInfo returns the current webhook status.
func (c *Client) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	resp, err := c.Call(ctx, "getWebhookInfo", nil)
	if err != nil {
		return nil, err
	}
	var info WebhookInfo
	if err := resp.DecodeResult(&info); err != nil {
		return nil, fmt.Errorf("%w: getWebhookInfo: %v", ErrDecode, err)
	}
	return &info, nil
}

// SendMessage sends a text message. parse_mode defaults to HTML; pass
// "parse_mode" in opts to override it.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, opts Params) (*Response, error) {
	params := Params{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": DefaultParseMode,
	}
	return c.Call(ctx, "sendMessage", params.With(opts))
}

// SendChatAction shows a chat action such as "typing".
func (c *Client) SendChatAction(ctx context.Context, chatID string, action ChatAction, opts Params) (*Response, error) {
	params := Params{"chat_id": chatID, "action": string(action)}
	return c.Call(ctx, "sendChatAction", params.With(opts))
}

// EditMessageText replaces the text of a previously sent message.
func (c *Client) EditMessageText(ctx context.Context, chatID string, messageID int, text string, opts Params) (*Response, error) {
	params := Params{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": DefaultParseMode,
	}
	return c.Call(ctx, "editMessageText", params.With(opts))
}

// EditMessageCaption replaces the caption of a previously sent message.
func (c *Client) EditMessageCaption(ctx context.Context, chatID string, messageID int, caption string, opts Params) (*Response, error) {
	params := Params{
		"chat_id":    chatID,
		"message_id": messageID,
		"caption":    caption,
		"parse_mode": DefaultParseMode,
	}
	return c.Call(ctx, "editMessageCaption", params.With(opts))
}

// EditMessageReplyMarkup replaces the inline keyboard of a message. A nil
// markup removes it.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, chatID string, messageID int, markup any, opts Params) (*Response, error) {
	params := Params{"chat_id": chatID, "message_id": messageID}.Add("reply_markup", markup)
	return c.Call(ctx, "editMessageReplyMarkup", params.With(opts))
}

// EditMessageMedia replaces the media of a message.
func (c *Client) EditMessageMedia(ctx context.Context, chatID string, messageID int, media any, opts Params) (*Response, error) {
	params := Params{"chat_id": chatID, "message_id": messageID, "media": media}
	return c.Call(ctx, "editMessageMedia", params.With(opts))
}

// DeleteMessage deletes a single message.
func (c *Client) DeleteMessage(ctx context.Context, chatID string, messageID int) (*Response, error) {
	return c.Call(ctx, "deleteMessage", Params{"chat_id": chatID, "message_id": messageID})
}

// DeleteMessages deletes several messages at once.
func (c *Client) DeleteMessages(ctx context.Context, chatID string, messageIDs []int) (*Response, error) {
	return c.Call(ctx, "deleteMessages", Params{"chat_id": chatID, "message_ids": messageIDs})
}

// ForwardMessage forwards a message from one chat to another.
func (c *Client) ForwardMessage(ctx context.Context, chatID, fromChatID string, messageID int, opts Params) (*Response, error) {
	params := Params{"chat_id": chatID, "from_chat_id": fromChatID, "message_id": messageID}
	return c.Call(ctx, "forwardMessage", params.With(opts))
}

// CopyMessage copies a message without a link to the original.
func (c *Client) CopyMessage(ctx context.Context, chatID, fromChatID string, messageID int, opts Params) (*Response, error) {
	params := Params{"chat_id": chatID, "from_chat_id": fromChatID, "message_id": messageID}
	return c.Call(ctx, "copyMessage", params.With(opts))
}

// GetChat returns up-to-date information about a chat.
func (c *Client) GetChat(ctx context.Context, chatID string) (*Response, error) {
	return c.Call(ctx, "getChat", Params{"chat_id": chatID})
}

// GetChatMember returns information about a member of a chat.
func (c *Client) GetChatMember(ctx context.Context, chatID string, userID int64) (*Response, error) {
	return c.Call(ctx, "getChatMember", Params{"chat_id": chatID, "user_id": userID})
}

// GetChatMemberCount returns the number of members in a chat.
func (c *Client) GetChatMemberCount(ctx context.Context, chatID string) (*Response, error) {
	return c.Call(ctx, "getChatMemberCount", Params{"chat_id": chatID})
}

// PinChatMessage pins a message in a chat.
func (c *Client) PinChatMessage(ctx context.Context, chatID string, messageID int, disableNotification bool) (*Response, error) {
	params := Params{"chat_id": chatID, "message_id": messageID}.Add("disable_notification", disableNotification)
	return c.Call(ctx, "pinChatMessage", params)
}

// UnpinChatMessage unpins a message; messageID 0 unpins the most recent one.
func (c *Client) UnpinChatMessage(ctx context.Context, chatID string, messageID int) (*Response, error) {
	params := Params{"chat_id": chatID}.Add("message_id", messageID)
	return c.Call(ctx, "unpinChatMessage", params)
}

// UnpinAllChatMessages clears the list of pinned messages in a chat.
func (c *Client) UnpinAllChatMessages(ctx context.Context, chatID string) (*Response, error) {
	return c.Call(ctx, "unpinAllChatMessages", Params{"chat_id": chatID})
}

// GetFile retrieves basic info about a file and prepares it for downloading.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	resp, err := c.Call(ctx, "getFile", Params{"file_id": fileID})
	if err != nil {
		return nil, err
	}
	var f File
	if err := resp.DecodeResult(&f); err != nil {
		return nil, fmt.Errorf("%w: getFile: %v", ErrDecode, err)
	}
	return &f, nil
}

// FileURL returns the download URL for a file path returned by GetFile.
func (c *Client) FileURL(filePath string) string {
	return fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, filePath)
}

// SetMyCommands replaces the bot's command menu.
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand, opts Params) (*Response, error) {
	return c.Call(ctx, "setMyCommands", Params{"commands": commands}.With(opts))
}

// DeleteMyCommands removes the bot's command menu.
func (c *Client) DeleteMyCommands(ctx context.Context, opts Params) (*Response, error) {
	return c.Call(ctx, "deleteMyCommands", Params{}.With(opts))
}

// GetMyCommands returns the bot's command menu.
func (c *Client) GetMyCommands(ctx context.Context, opts Params) ([]BotCommand, error) {
	resp, err := c.Call(ctx, "getMyCommands", Params{}.With(opts))
	if err != nil {
		return nil, err
	}
	var cmds []BotCommand
	if err := resp.DecodeResult(&cmds); err != nil {
		return nil, fmt.Errorf("%w: getMyCommands: %v", ErrDecode, err)
	}
	return cmds, nil
}

// sendMedia sends a file_id or URL based media message. parse_mode is only
// set when a caption is present.
func (c *Client) sendMedia(ctx context.Context, method, field, chatID, media, caption string, opts Params) (*Response, error) {
	params := Params{"chat_id": chatID, field: media}
	if caption != "" {
		params["caption"] = caption
		params["parse_mode"] = DefaultParseMode
	}
	return c.Call(ctx, method, params.With(opts))
}

// SendPhoto sends a photo by file_id or URL.
func (c *Client) SendPhoto(ctx context.Context, chatID, photo, caption string, opts Params) (*Response, error) {
	return c.sendMedia(ctx, "sendPhoto", "photo", chatID, photo, caption, opts)
}

// SendDocument sends a document by file_id or URL.
func (c *Client) SendDocument(ctx context.Context, chatID, document, caption string, opts Params) (*Response, error) {
	return c.sendMedia(ctx, "sendDocument", "document", chatID, document, caption, opts)
}

// SendVideo sends a video by file_id or URL.
func (c *Client) SendVideo(ctx context.Context, chatID, video, caption string, opts Params) (*Response, error) {
	return c.sendMedia(ctx, "sendVideo", "video", chatID, video, caption, opts)
}

// SendAudio sends an audio file by file_id or URL.
func (c *Client) SendAudio(ctx context.Context, chatID, audio, caption string, opts Params) (*Response, error) {
	return c.sendMedia(ctx, "sendAudio", "audio", chatID, audio, caption, opts)
}

// SendVoice sends a voice note by file_id or URL.
func (c *Client) SendVoice(ctx context.Context, chatID, voice, caption string, opts Params) (*Response, error) {
	return c.sendMedia(ctx, "sendVoice", "voice", chatID, voice, caption, opts)
}

// SendAnimation sends a GIF or soundless video by file_id or URL.
func (c *Client) SendAnimation(ctx context.Context, chatID, animation, caption string, opts Params) (*Response, error) {
	return c.sendMedia(ctx, "sendAnimation", "animation", chatID, animation, caption, opts)
}

// SendSticker sends a sticker by file_id or URL.
func (c *Client) SendSticker(ctx context.Context, chatID, sticker string, opts Params) (*Response, error) {
	return c.Call(ctx, "sendSticker", Params{"chat_id": chatID, "sticker": sticker}.With(opts))
}

// SendVideoNote sends a rounded square video by file_id or URL.
func (c *Client) SendVideoNote(ctx context.Context, chatID, videoNote string, opts Params) (*Response, error) {
	return c.Call(ctx, "sendVideoNote", Params{"chat_id": chatID, "video_note": videoNote}.With(opts))
}

// SendLocation sends a point on the map.
func (c *Client) SendLocation(ctx context.Context, chatID string, latitude, longitude float64, opts Params) (*Response, error) {
	params := Params{"chat_id": chatID, "latitude": latitude, "longitude": longitude}
	return c.Call(ctx, "sendLocation", params.With(opts))
}

// SendVenue sends information about a venue.
func (c *Client) SendVenue(ctx context.Context, chatID string, latitude, longitude float64, title, address string, opts Params) (*Response, error) {
	params := Params{
		"chat_id":   chatID,
		"latitude":  latitude,
		"longitude": longitude,
		"title":     title,
		"address":   address,
	}
	return c.Call(ctx, "sendVenue", params.With(opts))
}

// SendContact sends a phone contact.
func (c *Client) SendContact(ctx context.Context, chatID, phoneNumber, firstName string, opts Params) (*Response, error) {
	params := Params{"chat_id": chatID, "phone_number": phoneNumber, "first_name": firstName}
	return c.Call(ctx, "sendContact", params.With(opts))
}

// SendPoll sends a native poll with the given answer options.
func (c *Client) SendPoll(ctx context.Context, chatID, question string, options []string, opts Params) (*Response, error) {
	formatted := make([]map[string]string, len(options))
	for i, o := range options {
		formatted[i] = map[string]string{"text": o}
	}
	params := Params{"chat_id": chatID, "question": question, "options": formatted}
	return c.Call(ctx, "sendPoll", params.With(opts))
}

// SendDice sends an animated emoji with a random value. An empty emoji
// lets the API pick the default die.
func (c *Client) SendDice(ctx context.Context, chatID, emoji string, opts Params) (*Response, error) {
	params := Params{"chat_id": chatID}.Add("emoji", emoji)
	return c.Call(ctx, "sendDice", params.With(opts))
}

// SendMediaGroup sends an album of photos, videos, documents or audios.
func (c *Client) SendMediaGroup(ctx context.Context, chatID string, media []map[string]any, opts Params) (*Response, error) {
	return c.Call(ctx, "sendMediaGroup", Params{"chat_id": chatID, "media": media}.With(opts))
}

// AnswerCallbackQuery acknowledges an inline keyboard callback.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string, showAlert bool, opts Params) (*Response, error) {
	params := Params{"callback_query_id": callbackQueryID}.
		Add("text", text).
		Add("show_alert", showAlert)
	return c.Call(ctx, "answerCallbackQuery", params.With(opts))
}

// AnswerInlineQuery sends results for an inline query.
func (c *Client) AnswerInlineQuery(ctx context.Context, inlineQueryID string, results []map[string]any, opts Params) (*Response, error) {
	params := Params{"inline_query_id": inlineQueryID, "results": results}
	return c.Call(ctx, "answerInlineQuery", params.With(opts))
}

// BanChatMember bans a user from a group, supergroup or channel.
func (c *Client) BanChatMember(ctx context.Context, chatID string, userID int64, opts Params) (*Response, error) {
	return c.Call(ctx, "banChatMember", Params{"chat_id": chatID, "user_id": userID}.With(opts))
}

// UnbanChatMember lifts a previous ban.
func (c *Client) UnbanChatMember(ctx context.Context, chatID string, userID int64, opts Params) (*Response, error) {
	return c.Call(ctx, "unbanChatMember", Params{"chat_id": chatID, "user_id": userID}.With(opts))
}
