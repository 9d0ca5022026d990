package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/flemzord/tgnotify/pkg/botapi"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingHandler struct {
	mu      sync.Mutex
	updates []botapi.Update
	err     error
}

func (h *recordingHandler) HandleUpdate(_ context.Context, u botapi.Update) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updates = append(h.updates, u)
	return h.err
}

type kindRecorder struct {
	mu    sync.Mutex
	kinds []string
	errs  int
}

func (r *kindRecorder) UpdateReceived(kind string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
	if err != nil {
		r.errs++
	}
}

const messageUpdate = `{"update_id":10,"message":{"message_id":5,"chat":{"id":-100,"type":"group"},"date":1,"text":"hi"}}`

func postUpdate(t *testing.T, h http.Handler, path, body, secret string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if secret != "" {
		req.Header.Set(SecretHeader, secret)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestServer_DeliversUpdate(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	rec := &kindRecorder{}
	s := New(Config{Path: "/hook"}, h, testLogger(), WithRecorder(rec))

	rr := postUpdate(t, s.Router(), "/hook", messageUpdate, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != `{"ok":true}` {
		t.Errorf("body = %q", rr.Body.String())
	}
	if len(h.updates) != 1 || h.updates[0].UpdateID != 10 || h.updates[0].Message.Text != "hi" {
		t.Errorf("updates = %+v", h.updates)
	}
	if len(rec.kinds) != 1 || rec.kinds[0] != "message" || rec.errs != 0 {
		t.Errorf("recorded = %v errs=%d", rec.kinds, rec.errs)
	}
}

func TestServer_Secret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		secret string
		want   int
	}{
		{"match", "s3cret", http.StatusOK},
		{"mismatch", "nope", http.StatusForbidden},
		{"missing", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := &recordingHandler{}
			s := New(Config{Path: "/hook", Secret: "s3cret"}, h, testLogger())
			rr := postUpdate(t, s.Router(), "/hook", messageUpdate, tt.secret)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			if called := len(h.updates) == 1; called != (tt.want == http.StatusOK) {
				t.Errorf("handler called = %v", called)
			}
		})
	}
}

func TestServer_InvalidBody(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	rec := &kindRecorder{}
	s := New(Config{}, h, testLogger(), WithRecorder(rec))

	rr := postUpdate(t, s.Router(), "/telegram/webhook", "{not json", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if len(h.updates) != 0 {
		t.Error("handler called for invalid body")
	}
	if len(rec.kinds) != 1 || rec.kinds[0] != "invalid" || rec.errs != 1 {
		t.Errorf("recorded = %v errs=%d", rec.kinds, rec.errs)
	}
}

func TestServer_HandlerErrorIs500(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{err: errors.New("downstream")}
	s := New(Config{Path: "/hook"}, h, testLogger())

	rr := postUpdate(t, s.Router(), "/hook", `{"update_id":1,"callback_query":{"id":"q"}}`, "")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	s := New(Config{Path: "/hook"}, &recordingHandler{}, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/hook", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	s := New(Config{}, &recordingHandler{}, testLogger(), WithMetrics(metrics))
	router := s.Router()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	var health HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil || health.Status != "ok" {
		t.Errorf("health = %q (%v)", rr.Body.String(), err)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Body.String() != "# metrics" {
		t.Errorf("metrics body = %q", rr.Body.String())
	}
}

func TestServer_NoMetricsRoute(t *testing.T) {
	t.Parallel()

	s := New(Config{}, &recordingHandler{}, testLogger())
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestServer_StartShutdown(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	s := New(Config{Listen: "127.0.0.1:0", Path: "/hook"}, h, testLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() succeeded")
	}

	url := "http://" + s.Addr().String() + "/hook"
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(messageUpdate)))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
	if _, err := http.Post(url, "application/json", strings.NewReader(messageUpdate)); err == nil {
		t.Error("server still accepting after Shutdown")
	}
}

func TestUpdateKind(t *testing.T) {
	t.Parallel()

	m := &botapi.Message{}
	tests := []struct {
		u    botapi.Update
		want string
	}{
		{botapi.Update{Message: m}, "message"},
		{botapi.Update{EditedMessage: m}, "edited_message"},
		{botapi.Update{ChannelPost: m}, "channel_post"},
		{botapi.Update{CallbackQuery: &botapi.CallbackQuery{}}, "callback_query"},
		{botapi.Update{}, "other"},
	}
	for _, tt := range tests {
		if got := UpdateKind(tt.u); got != tt.want {
			t.Errorf("UpdateKind() = %q, want %q", got, tt.want)
		}
	}
}
