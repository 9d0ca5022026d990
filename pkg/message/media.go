package message

import "github.com/flemzord/tgnotify/pkg/botapi"

// Media holds the fields shared by file-bearing messages.
type Media struct {
	// File is a file_id already stored on Telegram's servers or an HTTP URL.
	File string

	// LocalPath, when set, uploads the file from disk instead of File.
	LocalPath string

	Caption string

	// ParseMode applies to the caption and defaults to HTML. It is only
	// sent along with a caption.
	ParseMode ParseMode
}

// params writes the file reference and caption under field.
func (m Media) params(field string) botapi.Params {
	p := botapi.Params{}
	if m.LocalPath == "" {
		p.Add(field, m.File)
	}
	if m.Caption != "" {
		p["caption"] = m.Caption
		p["parse_mode"] = string(m.ParseMode.orDefault())
	}
	return p
}

func (m Media) upload(field string) (string, string) {
	if m.LocalPath == "" {
		return "", ""
	}
	return field, m.LocalPath
}

// Photo is sent with sendPhoto.
type Photo struct {
	Options
	Media
	HasSpoiler bool
}

// APIMethod implements Message.
func (m *Photo) APIMethod() string { return "sendPhoto" }

// UploadFile implements Uploadable.
func (m *Photo) UploadFile() (string, string) { return m.upload("photo") }

// Params implements Message.
func (m *Photo) Params() botapi.Params {
	p := m.params("photo").Add("has_spoiler", m.HasSpoiler)
	return m.apply(p)
}

// Document is sent with sendDocument.
type Document struct {
	Options
	Media
	Thumbnail                   string
	DisableContentTypeDetection bool
}

// APIMethod implements Message.
func (m *Document) APIMethod() string { return "sendDocument" }

// UploadFile implements Uploadable.
func (m *Document) UploadFile() (string, string) { return m.upload("document") }

// Params implements Message.
func (m *Document) Params() botapi.Params {
	p := m.params("document").
		Add("thumbnail", m.Thumbnail).
		Add("disable_content_type_detection", m.DisableContentTypeDetection)
	return m.apply(p)
}

// Video is sent with sendVideo.
type Video struct {
	Options
	Media
	Duration          int
	Width             int
	Height            int
	Thumbnail         string
	HasSpoiler        bool
	SupportsStreaming bool
}

// APIMethod implements Message.
func (m *Video) APIMethod() string { return "sendVideo" }

// UploadFile implements Uploadable.
func (m *Video) UploadFile() (string, string) { return m.upload("video") }

// Params implements Message.
func (m *Video) Params() botapi.Params {
	p := m.params("video").
		Add("duration", m.Duration).
		Add("width", m.Width).
		Add("height", m.Height).
		Add("thumbnail", m.Thumbnail).
		Add("has_spoiler", m.HasSpoiler).
		Add("supports_streaming", m.SupportsStreaming)
	return m.apply(p)
}

// Audio is a music file sent with sendAudio.
type Audio struct {
	Options
	Media
	Duration  int
	Performer string
	Title     string
	Thumbnail string
}

// APIMethod implements Message.
func (m *Audio) APIMethod() string { return "sendAudio" }

// UploadFile implements Uploadable.
func (m *Audio) UploadFile() (string, string) { return m.upload("audio") }

// Params implements Message.
func (m *Audio) Params() botapi.Params {
	p := m.params("audio").
		Add("duration", m.Duration).
		Add("performer", m.Performer).
		Add("title", m.Title).
		Add("thumbnail", m.Thumbnail)
	return m.apply(p)
}

// Voice is a voice note sent with sendVoice.
type Voice struct {
	Options
	Media
	Duration int
}

// APIMethod implements Message.
func (m *Voice) APIMethod() string { return "sendVoice" }

// UploadFile implements Uploadable.
func (m *Voice) UploadFile() (string, string) { return m.upload("voice") }

// Params implements Message.
func (m *Voice) Params() botapi.Params {
	p := m.params("voice").Add("duration", m.Duration)
	return m.apply(p)
}

// Animation is a GIF or soundless video sent with sendAnimation.
type Animation struct {
	Options
	Media
	Duration   int
	Width      int
	Height     int
	Thumbnail  string
	HasSpoiler bool
}

// APIMethod implements Message.
func (m *Animation) APIMethod() string { return "sendAnimation" }

// UploadFile implements Uploadable.
func (m *Animation) UploadFile() (string, string) { return m.upload("animation") }

// Params implements Message.
func (m *Animation) Params() botapi.Params {
	p := m.params("animation").
		Add("duration", m.Duration).
		Add("width", m.Width).
		Add("height", m.Height).
		Add("thumbnail", m.Thumbnail).
		Add("has_spoiler", m.HasSpoiler)
	return m.apply(p)
}
