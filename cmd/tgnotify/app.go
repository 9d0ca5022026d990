package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/flemzord/tgnotify/internal/config"
	"github.com/flemzord/tgnotify/internal/security"
	"github.com/flemzord/tgnotify/internal/telemetry"
	"github.com/flemzord/tgnotify/pkg/botapi"
	"github.com/flemzord/tgnotify/pkg/telegram"
	"github.com/flemzord/tgnotify/pkg/tglog"
)

// app bundles what every bot-facing command needs.
type app struct {
	cfg      *config.Config
	cfgPath  string
	bot      string
	logger   *slog.Logger
	tg       *telegram.Telegram
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
}

// newApp loads and validates the configuration and wires the dispatcher,
// metrics and logging.
func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, resolved, err := config.LoadOrEnv(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	bot, _ := cmd.Flags().GetString("bot")
	if bot != "" {
		if _, ok := cfg.Bots[bot]; !ok {
			return nil, fmt.Errorf("%w: %q", telegram.ErrUnknownBot, bot)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(reg)

	tg := telegram.New(cfg.Telegram(), telegram.WithClientOptions(
		botapi.WithObserver(telemetry.NewObserver(metrics, nil)),
	))

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := newLogger(cmd.ErrOrStderr(), verbose, cfg, tg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	return &app{
		cfg:      cfg,
		cfgPath:  resolved,
		bot:      bot,
		logger:   logger,
		tg:       tg,
		registry: reg,
		metrics:  metrics,
	}, nil
}

// newLogger builds a text logger on w, fanned out to a chat when logging
// is enabled in the configuration. Tokens and the webhook secret are
// redacted on every output.
func newLogger(w io.Writer, verbose bool, cfg *config.Config, tg *telegram.Telegram) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	var handler slog.Handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})

	redactor := security.NewRedactor(cfg.Webhook.Secret)
	for _, b := range cfg.Bots {
		redactor.AddLiteral(b.Token)
	}

	if !cfg.Logging.Enabled {
		return slog.New(security.NewRedactingHandler(handler, redactor)), nil
	}

	lc := cfg.Logging
	client, err := tg.Bot(lc.Bot)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	bc, err := tg.BotConfig(lc.Bot)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	chatID, topicID := lc.ChatID, lc.TopicID
	if chatID == "" {
		chatID = bc.ChatID
		if topicID == "" {
			topicID = bc.TopicID
		}
	}

	handler = tglog.Fanout(handler, tglog.NewHandler(client, tglog.HandlerOptions{
		ChatID:      chatID,
		TopicID:     topicID,
		Level:       lc.LogLevel(),
		AppName:     lc.AppName,
		Environment: lc.Environment,
		RatePerSec:  lc.RatePerSec,
	}))
	return slog.New(security.NewRedactingHandler(handler, redactor)), nil
}

// client returns the API client of the selected bot.
func (a *app) client() (*botapi.Client, error) {
	return a.tg.Bot(a.bot)
}

// defaultChat returns the selected bot's configured chat and topic.
func (a *app) defaultChat() (string, string) {
	bc, err := a.tg.BotConfig(a.bot)
	if err != nil {
		return "", ""
	}
	return bc.ChatID, bc.TopicID
}
