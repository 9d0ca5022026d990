// Package config handles YAML configuration loading, environment variable
// expansion, and validation for tgnotify.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/flemzord/tgnotify/pkg/botapi"
	"github.com/flemzord/tgnotify/pkg/telegram"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version" validate:"required,eq=1"`

	// Default names the bot used when a message does not pick one.
	Default string `yaml:"default" validate:"required"`

	// APIBaseURL overrides the Bot API endpoint (e.g. a local Bot API server).
	APIBaseURL string `yaml:"api_base_url,omitempty" validate:"omitempty,url"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout,omitempty" validate:"gte=0,lte=600"`

	Bots map[string]BotConfig `yaml:"bots" validate:"required,min=1,dive,keys,required,endkeys"`

	Logging   LoggingConfig    `yaml:"logging,omitempty"`
	Webhook   WebhookConfig    `yaml:"webhook,omitempty"`
	Telemetry TelemetryConfig  `yaml:"telemetry,omitempty"`
	Schedules []ScheduleConfig `yaml:"schedules,omitempty" validate:"dive"`
}

// BotConfig is one named bot identity.
type BotConfig struct {
	Token   string `yaml:"token" validate:"required,token"`
	ChatID  string `yaml:"chat_id,omitempty"`
	TopicID string `yaml:"topic_id,omitempty" validate:"omitempty,numeric"`
}

// LoggingConfig routes application logs to a chat.
type LoggingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Bot defaults to the default bot; ChatID and TopicID default to the
	// bot's own.
	Bot     string `yaml:"bot,omitempty"`
	ChatID  string `yaml:"chat_id,omitempty"`
	TopicID string `yaml:"topic_id,omitempty" validate:"omitempty,numeric"`

	// Level is the minimum level forwarded: debug, info, warn or error.
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	AppName     string  `yaml:"app_name,omitempty"`
	Environment string  `yaml:"environment,omitempty"`
	RatePerSec  float64 `yaml:"rate_per_sec,omitempty" validate:"gte=0"`
}

// WebhookConfig configures the inbound update receiver.
type WebhookConfig struct {
	// Listen is the address the receiver binds to, e.g. ":8080".
	Listen string `yaml:"listen,omitempty" validate:"omitempty,hostname_port"`

	// Path is the route updates are posted to.
	Path string `yaml:"path,omitempty" validate:"omitempty,startswith=/"`

	// URL is the public URL registered with setWebhook.
	URL string `yaml:"url,omitempty" validate:"omitempty,url"`

	// Secret is compared against X-Telegram-Bot-Api-Secret-Token.
	Secret string `yaml:"secret,omitempty" validate:"omitempty,max=256"`

	Bot string `yaml:"bot,omitempty"`
}

// TelemetryConfig configures metrics and tracing.
type TelemetryConfig struct {
	Metrics bool          `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing,omitempty"`
}

// TracingConfig configures the OTLP/HTTP trace exporter. An empty
// endpoint disables tracing.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint,omitempty"`
	Insecure    bool    `yaml:"insecure,omitempty"`
	ServiceName string  `yaml:"service_name,omitempty"`
	SampleRatio float64 `yaml:"sample_ratio,omitempty" validate:"gte=0,lte=1"`
}

// ScheduleConfig is a message sent on a cron schedule.
type ScheduleConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Schedule string `yaml:"schedule" validate:"required"`
	Bot      string `yaml:"bot,omitempty"`
	ChatID   string `yaml:"chat_id,omitempty"`
	TopicID  string `yaml:"topic_id,omitempty" validate:"omitempty,numeric"`
	Text     string `yaml:"text" validate:"required"`

	ParseMode string `yaml:"parse_mode,omitempty" validate:"omitempty,oneof=HTML MarkdownV2 Markdown"`
	Silent    bool   `yaml:"silent,omitempty"`
}

// Defaults for optional fields.
const (
	DefaultTimeout     = 10
	DefaultWebhookPath = "/telegram/webhook"
	DefaultListen      = ":8080"
	DefaultServiceName = "tgnotify"
)

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Default == "" && len(c.Bots) == 1 {
		for name := range c.Bots {
			c.Default = name
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "error"
	}
	if c.Webhook.Path == "" {
		c.Webhook.Path = DefaultWebhookPath
	}
	if c.Webhook.Listen == "" {
		c.Webhook.Listen = DefaultListen
	}
	if c.Telemetry.Tracing.ServiceName == "" {
		c.Telemetry.Tracing.ServiceName = DefaultServiceName
	}
	if c.Telemetry.Tracing.SampleRatio == 0 {
		c.Telemetry.Tracing.SampleRatio = 1
	}
}

// RequestTimeout returns the per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return botapi.DefaultTimeout
	}
	return time.Duration(c.Timeout) * time.Second
}

// Telegram converts the bot section into a dispatcher configuration.
func (c *Config) Telegram() telegram.Config {
	bots := make(map[string]telegram.BotConfig, len(c.Bots))
	for name, b := range c.Bots {
		bots[name] = telegram.BotConfig{Token: b.Token, ChatID: b.ChatID, TopicID: b.TopicID}
	}
	return telegram.Config{
		Bots:    bots,
		Default: c.Default,
		BaseURL: c.APIBaseURL,
		Timeout: c.RequestTimeout(),
	}
}

// LogLevel returns the parsed logging level, defaulting to error.
func (l LoggingConfig) LogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
