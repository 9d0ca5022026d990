// Package webhook receives Bot API updates over HTTP and hands them to a
// Handler.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flemzord/tgnotify/pkg/botapi"
)

// SecretHeader carries the secret_token registered with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

const maxUpdateBytes = 1 << 20

// Handler processes one update. Returning an error makes the receiver
// answer 500 so the Bot API redelivers the update.
type Handler interface {
	HandleUpdate(ctx context.Context, u botapi.Update) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, u botapi.Update) error

// HandleUpdate implements Handler.
func (f HandlerFunc) HandleUpdate(ctx context.Context, u botapi.Update) error { return f(ctx, u) }

// Recorder is notified of every update the receiver accepts or rejects.
type Recorder interface {
	UpdateReceived(kind string, err error)
}

// Config configures a Server.
type Config struct {
	Listen string
	Path   string
	Secret string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Path == "" {
		c.Path = "/telegram/webhook"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithRecorder reports update outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// Server is the update receiver.
type Server struct {
	config   Config
	handler  Handler
	logger   *slog.Logger
	metrics  http.Handler
	recorder Recorder

	mu        sync.Mutex
	server    *http.Server
	addr      net.Addr
	startedAt time.Time
}

// New returns a receiver dispatching to h.
func New(cfg Config, h Handler, logger *slog.Logger, opts ...Option) *Server {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{config: cfg, handler: h, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi mux with all routes wired.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth())
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.With(VerifySecret(s.config.Secret)).Post(s.config.Path, s.handleUpdate())

	return r
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return errors.New("webhook: already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("webhook: listen %s: %w", s.config.Listen, err)
	}

	s.server = &http.Server{
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.addr = ln.Addr()
	s.startedAt = time.Now()

	srv := s.server
	go func() {
		s.logger.Info("webhook listening", "addr", ln.Addr().String(), "path", s.config.Path)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("webhook serve error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown stops accepting updates and waits for in-flight ones, bounded
// by the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("webhook shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u botapi.Update
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes))
		if err := dec.Decode(&u); err != nil {
			s.record("invalid", err)
			http.Error(w, "invalid update", http.StatusBadRequest)
			return
		}

		kind := UpdateKind(u)
		if err := s.handler.HandleUpdate(r.Context(), u); err != nil {
			s.record(kind, err)
			s.logger.Error("update handler failed", "update_id", u.UpdateID, "kind", kind, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		s.record(kind, nil)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}

func (s *Server) record(kind string, err error) {
	if s.recorder != nil {
		s.recorder.UpdateReceived(kind, err)
	}
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime,omitempty"`
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "ok"}
		s.mu.Lock()
		if !s.startedAt.IsZero() {
			resp.Uptime = time.Since(s.startedAt).Truncate(time.Second).String()
		}
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// UpdateKind names the payload an update carries.
func UpdateKind(u botapi.Update) string {
	switch {
	case u.Message != nil:
		return "message"
	case u.EditedMessage != nil:
		return "edited_message"
	case u.ChannelPost != nil:
		return "channel_post"
	case u.CallbackQuery != nil:
		return "callback_query"
	default:
		return "other"
	}
}
