package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flemzord/tgnotify/pkg/botapi"
	"github.com/flemzord/tgnotify/pkg/message"
)

// call is one request captured by fakeAPI.
type call struct {
	Token  string
	Method string
	Params map[string]any
}

// fakeAPI is a Bot API stand-in. fail decides, per call index (0-based),
// whether to answer with a 400.
type fakeAPI struct {
	srv   *httptest.Server
	mu    sync.Mutex
	calls []call
	fail  func(i int, c call) bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/bot"), "/", 2)
	c := call{Token: parts[0], Method: parts[1], Params: map[string]any{}}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		_ = r.ParseMultipartForm(1 << 20)
		for k, v := range r.MultipartForm.Value {
			c.Params[k] = v[0]
		}
		for k := range r.MultipartForm.File {
			c.Params[k] = "<file>"
		}
	} else {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &c.Params)
	}

	f.mu.Lock()
	i := len(f.calls)
	f.calls = append(f.calls, c)
	fail := f.fail
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fail != nil && fail(i, c) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":     true,
		"result": map[string]any{"message_id": i + 1},
	})
}

func (f *fakeAPI) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func newTestTelegram(f *fakeAPI) *Telegram {
	return New(Config{
		Bots: map[string]BotConfig{
			"main":   {Token: "111:main", ChatID: "100"},
			"alerts": {Token: "222:alerts", ChatID: "200", TopicID: "9"},
		},
		Default: "main",
		BaseURL: f.srv.URL,
	})
}

func TestBot_UnknownNameFailsWithoutNetwork(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	tg := newTestTelegram(f)

	_, err := tg.Bot("nope")
	if !errors.Is(err, ErrUnknownBot) {
		t.Errorf("error = %v, want ErrUnknownBot", err)
	}
	if !errors.Is(err, botapi.ErrInvalidArgument) {
		t.Errorf("error = %v, want botapi.ErrInvalidArgument", err)
	}

	_, err = tg.Send(context.Background(), &message.Text{Options: message.Options{ChatID: "1", Bot: "nope"}, Body: "x"}, "")
	if !errors.Is(err, ErrUnknownBot) {
		t.Errorf("Send() error = %v, want ErrUnknownBot", err)
	}
	if n := len(f.Calls()); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestBot_NoBots(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}).Bot("")
	if !errors.Is(err, ErrNoBots) || !errors.Is(err, botapi.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrNoBots", err)
	}
}

func TestBot_CachesClients(t *testing.T) {
	t.Parallel()

	tg := newTestTelegram(newFakeAPI(t))

	a, err := tg.Bot("")
	if err != nil {
		t.Fatal(err)
	}
	b, err := tg.Bot("main")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("default and named lookups returned different clients")
	}
	c, err := tg.Bot("alerts")
	if err != nil {
		t.Fatal(err)
	}
	if c == a {
		t.Error("different bots share a client")
	}
	if c.Token() != "222:alerts" {
		t.Errorf("Token() = %q", c.Token())
	}
}

func TestBot_ConcurrentLookups(t *testing.T) {
	t.Parallel()

	tg := newTestTelegram(newFakeAPI(t))

	var wg sync.WaitGroup
	clients := make([]*botapi.Client, 16)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clients[i], _ = tg.Bot("alerts")
		}(i)
	}
	wg.Wait()
	for i, c := range clients {
		if c != clients[0] {
			t.Fatalf("client %d differs from client 0", i)
		}
	}
}

func TestBotNames(t *testing.T) {
	t.Parallel()

	tg := newTestTelegram(newFakeAPI(t))
	got := tg.BotNames()
	if len(got) != 2 || got[0] != "alerts" || got[1] != "main" {
		t.Errorf("BotNames() = %v", got)
	}
	if tg.DefaultBot() != "main" {
		t.Errorf("DefaultBot() = %q", tg.DefaultBot())
	}
}

func TestSend_NoDestinationIsNoop(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	tg := newTestTelegram(f)

	resp, err := tg.Send(context.Background(), &message.Text{Body: "hello"}, "")
	if err != nil || resp != nil {
		t.Errorf("Send() = (%v, %v), want (nil, nil)", resp, err)
	}
	if n := len(f.Calls()); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestSend_Destination(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	tg := newTestTelegram(f)
	ctx := context.Background()

	if _, err := tg.Send(ctx, message.NewText("explicit", "a"), "fallback"); err != nil {
		t.Fatal(err)
	}
	if _, err := tg.Send(ctx, &message.Text{Body: "b"}, "fallback"); err != nil {
		t.Fatal(err)
	}
	if _, err := tg.Send(ctx, &message.Text{Options: message.Options{Bot: "alerts"}, Body: "c"}, "x"); err != nil {
		t.Fatal(err)
	}

	calls := f.Calls()
	if len(calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(calls))
	}
	if calls[0].Params["chat_id"] != "explicit" {
		t.Errorf("chat_id = %v, want explicit", calls[0].Params["chat_id"])
	}
	if calls[1].Params["chat_id"] != "fallback" {
		t.Errorf("chat_id = %v, want fallback", calls[1].Params["chat_id"])
	}
	if calls[0].Token != "111:main" || calls[2].Token != "222:alerts" {
		t.Errorf("tokens = %q, %q", calls[0].Token, calls[2].Token)
	}
}

// dice is a caller-defined message that renders no parameters of its own.
type dice struct{}

func (dice) APIMethod() string { return "sendDice" }
func (dice) Params() botapi.Params { return nil }
func (dice) Route() message.Route { return message.Route{} }

func TestSend_NilParams(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	tg := newTestTelegram(f)

	if _, err := tg.Send(context.Background(), dice{}, "42"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	calls := f.Calls()
	if len(calls) != 1 || calls[0].Method != "sendDice" || calls[0].Params["chat_id"] != "42" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestSend_ChunksLongText(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	tg := newTestTelegram(f)

	msg := &message.Text{
		Options: message.Options{
			ChatID:   "1",
			Keyboard: message.NewInlineKeyboard().URL("Open", "https://example.com"),
		},
		Body: strings.Repeat("a", 3000) + "\n" + strings.Repeat("b", 3000) + "\n" + strings.Repeat("c", 100),
	}

	resp, err := tg.Send(context.Background(), msg, "")
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	calls := f.Calls()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if resp.MessageID() != 2 {
		t.Errorf("MessageID() = %d, want 2 (last chunk)", resp.MessageID())
	}
	if calls[0].Params["text"] != strings.Repeat("a", 3000) {
		t.Error("first chunk text mismatch")
	}
	if _, ok := calls[0].Params["reply_markup"]; !ok {
		t.Error("first chunk lacks reply_markup")
	}
	if _, ok := calls[1].Params["reply_markup"]; ok {
		t.Error("second chunk carries reply_markup")
	}
	for i, c := range calls {
		if c.Params["parse_mode"] != "HTML" || c.Params["chat_id"] != "1" {
			t.Errorf("chunk %d params = %v", i, c.Params)
		}
	}
	if msg.Keyboard == nil {
		t.Error("Send() mutated the message")
	}
}

func TestSend_ChunkFailureAborts(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	f.fail = func(i int, _ call) bool { return i == 1 }
	tg := newTestTelegram(f)

	body := strings.Repeat("x", 3*message.MaxTextLength)
	_, err := tg.Send(context.Background(), message.NewText("1", body), "")

	var apiErr *botapi.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *botapi.APIError", err)
	}
	if n := len(f.Calls()); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestSend_NonTextBypassesChunking(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	tg := newTestTelegram(f)

	msg := &message.Photo{
		Options: message.Options{ChatID: "1"},
		Media:   message.Media{File: "file-id", Caption: strings.Repeat("c", 5000)},
	}
	if _, err := tg.Send(context.Background(), msg, ""); err != nil {
		t.Fatal(err)
	}
	calls := f.Calls()
	if len(calls) != 1 || calls[0].Method != "sendPhoto" {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestSend_LocalFileIsUploaded(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0o600); err != nil {
		t.Fatal(err)
	}

	f := newFakeAPI(t)
	tg := newTestTelegram(f)

	msg := &message.Document{
		Options: message.Options{ChatID: "5"},
		Media:   message.Media{LocalPath: path, Caption: "weekly"},
	}
	if _, err := tg.Send(context.Background(), msg, ""); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	calls := f.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].Params["document"] != "<file>" || calls[0].Params["chat_id"] != "5" || calls[0].Params["caption"] != "weekly" {
		t.Errorf("params = %v", calls[0].Params)
	}
}

type user struct{ chat string }

func (u user) RouteTelegram(Notification) string { return u.chat }

type alert struct {
	chatID string
	text   string
}

func (a alert) ToTelegram(Notifiable) message.Message {
	return message.NewText(a.chatID, a.text)
}

func TestChannelSend(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	ch := NewChannel(newTestTelegram(f))
	ctx := context.Background()

	if _, err := ch.Send(ctx, user{chat: "routed"}, alert{text: "a"}); err != nil {
		t.Fatal(err)
	}
	if _, err := ch.Send(ctx, user{chat: "routed"}, alert{chatID: "own", text: "b"}); err != nil {
		t.Fatal(err)
	}
	resp, err := ch.Send(ctx, user{}, alert{text: "c"})
	if err != nil || resp != nil {
		t.Errorf("unrouted Send() = (%v, %v), want (nil, nil)", resp, err)
	}

	calls := f.Calls()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if calls[0].Params["chat_id"] != "routed" || calls[1].Params["chat_id"] != "own" {
		t.Errorf("chat ids = %v, %v", calls[0].Params["chat_id"], calls[1].Params["chat_id"])
	}
}

func TestBroadcast_IsolatesFailures(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	f.fail = func(_ int, c call) bool { return c.Params["chat_id"] == "B" }
	tg := newTestTelegram(f)

	var failed []string
	results := tg.Broadcast("A", "B", "C").
		HTML("<b>deploy done</b>").
		Silent().
		OnFailure(func(chatID string, err error) {
			failed = append(failed, chatID)
			var apiErr *botapi.APIError
			if !errors.As(err, &apiErr) {
				t.Errorf("callback error = %v, want *botapi.APIError", err)
			}
		}).
		Send(context.Background())

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, want := range []string{"A", "B", "C"} {
		if results[i].ChatID != want {
			t.Errorf("results[%d].ChatID = %q, want %q", i, results[i].ChatID, want)
		}
	}
	if !results[0].OK() || results[1].OK() || !results[2].OK() {
		t.Errorf("OK flags = %v %v %v, want true false true", results[0].OK(), results[1].OK(), results[2].OK())
	}
	if results[1].Response == nil || results[1].Response.OK {
		t.Errorf("failed result response = %+v, want synthetic not-ok", results[1].Response)
	}
	if string(results[1].Response.Result) != "[]" {
		t.Errorf("failed result payload = %s, want []", results[1].Response.Result)
	}
	if len(failed) != 1 || failed[0] != "B" {
		t.Errorf("failure callback calls = %v, want [B]", failed)
	}

	calls := f.Calls()
	if len(calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(calls))
	}
	if calls[0].Params["disable_notification"] != true || calls[0].Params["parse_mode"] != "HTML" {
		t.Errorf("params = %v", calls[0].Params)
	}
}

func TestBroadcast_Empty(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	results := newTestTelegram(f).Broadcast().Text("x").Send(context.Background())
	if results == nil || len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
	if n := len(f.Calls()); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestBroadcast_DelayOnlyBetweenDestinations(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	tg := newTestTelegram(f)
	var waits atomic.Int32
	tg.sleep = func(_ context.Context, d time.Duration) error {
		if d != 250*time.Millisecond {
			t.Errorf("wait = %v, want 250ms", d)
		}
		waits.Add(1)
		return nil
	}

	tg.Broadcast("A").To("B", "C").Markdown("*hi*").RateLimit(250 * time.Millisecond).Send(context.Background())

	if got := waits.Load(); got != 2 {
		t.Errorf("waits = %d, want 2", got)
	}
	if calls := f.Calls(); calls[0].Params["parse_mode"] != "MarkdownV2" {
		t.Errorf("parse_mode = %v, want MarkdownV2", calls[0].Params["parse_mode"])
	}
}

func TestBroadcast_UnknownBotFailsEveryDestination(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	var failures int
	results := newTestTelegram(f).Broadcast("A", "B").
		Bot("ghost").
		Text("x").
		OnFailure(func(string, error) { failures++ }).
		Send(context.Background())

	if failures != 2 {
		t.Errorf("failures = %d, want 2", failures)
	}
	for _, r := range results {
		if !errors.Is(r.Err, ErrUnknownBot) {
			t.Errorf("result error = %v, want ErrUnknownBot", r.Err)
		}
	}
	if n := len(f.Calls()); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestPendingMessage(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	tg := newTestTelegram(f)

	resp, err := tg.Message("42").
		Markdown("*hi*").
		Silent().
		Protected().
		DisablePreview().
		ReplyTo(10).
		Topic("3").
		Keyboard(message.ForceReply{}).
		Send(context.Background())
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if !resp.OK {
		t.Error("OK = false")
	}

	calls := f.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	p := calls[0].Params
	if p["chat_id"] != "42" || p["text"] != "*hi*" || p["parse_mode"] != "MarkdownV2" ||
		p["message_thread_id"] != "3" || p["disable_notification"] != true ||
		p["protect_content"] != true || p["disable_web_page_preview"] != true {
		t.Errorf("params = %v", p)
	}
	if rp, ok := p["reply_parameters"].(map[string]any); !ok || rp["message_id"] != float64(10) {
		t.Errorf("reply_parameters = %v", p["reply_parameters"])
	}
}

func TestPendingMessage_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	tg := newTestTelegram(f)
	ctx := context.Background()

	for name, pm := range map[string]*PendingMessage{
		"no text":         tg.Message("1"),
		"send when false": tg.Message("1").Text("hello").SendWhen(false),
	} {
		resp, err := pm.Send(ctx)
		if err != nil {
			t.Fatalf("%s: Send() error: %v", name, err)
		}
		if !resp.OK || string(resp.Result) != "[]" {
			t.Errorf("%s: response = %+v, want ok with empty result", name, resp)
		}
	}

	if _, err := tg.Message("1").Text("kept").SendWhen(true).Send(ctx); err != nil {
		t.Fatal(err)
	}
	if n := len(f.Calls()); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestChatActionShortcuts(t *testing.T) {
	t.Parallel()

	f := newFakeAPI(t)
	tg := newTestTelegram(f)
	ctx := context.Background()

	shortcuts := []struct {
		fn   func(context.Context, string) (*botapi.Response, error)
		want string
	}{
		{tg.Typing, "typing"},
		{tg.UploadingPhoto, "upload_photo"},
		{tg.UploadingDocument, "upload_document"},
		{tg.RecordingVideo, "record_video"},
		{tg.RecordingVoice, "record_voice"},
	}
	for _, s := range shortcuts {
		if _, err := s.fn(ctx, "7"); err != nil {
			t.Fatal(err)
		}
	}

	calls := f.Calls()
	if len(calls) != len(shortcuts) {
		t.Fatalf("calls = %d, want %d", len(calls), len(shortcuts))
	}
	for i, c := range calls {
		if c.Method != "sendChatAction" || c.Params["action"] != shortcuts[i].want || c.Params["chat_id"] != "7" {
			t.Errorf("call %d = %+v", i, c)
		}
	}
}
