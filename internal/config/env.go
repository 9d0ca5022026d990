package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by FromEnv.
const (
	EnvBot         = "TELEGRAM_BOT"
	EnvToken       = "TELEGRAM_BOT_TOKEN"
	EnvChatID      = "TELEGRAM_CHAT_ID"
	EnvTopicID     = "TELEGRAM_TOPIC_ID"
	EnvAPIBaseURL  = "TELEGRAM_API_BASE_URL"
	EnvTimeout     = "TELEGRAM_TIMEOUT"
	EnvLogEnabled  = "TELEGRAM_LOG_ENABLED"
	EnvLogBot      = "TELEGRAM_LOG_BOT"
	EnvLogChatID   = "TELEGRAM_LOG_CHAT_ID"
	EnvLogTopicID  = "TELEGRAM_LOG_TOPIC_ID"
	EnvLogLevel    = "TELEGRAM_LOG_LEVEL"
	defaultEnvName = "default"
)

// ErrNoToken is returned by FromEnv when TELEGRAM_BOT_TOKEN is unset.
var ErrNoToken = errors.New("config: " + EnvToken + " is not set")

// FromEnv builds a single-bot configuration from TELEGRAM_* variables.
func FromEnv() (*Config, error) {
	token := os.Getenv(EnvToken)
	if token == "" {
		return nil, ErrNoToken
	}

	name := os.Getenv(EnvBot)
	if name == "" {
		name = defaultEnvName
	}

	cfg := &Config{
		Version:    "1",
		Default:    name,
		APIBaseURL: os.Getenv(EnvAPIBaseURL),
		Bots: map[string]BotConfig{
			name: {
				Token:   token,
				ChatID:  os.Getenv(EnvChatID),
				TopicID: os.Getenv(EnvTopicID),
			},
		},
		Logging: LoggingConfig{
			Bot:     os.Getenv(EnvLogBot),
			ChatID:  os.Getenv(EnvLogChatID),
			TopicID: os.Getenv(EnvLogTopicID),
			Level:   os.Getenv(EnvLogLevel),
		},
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvTimeout, err)
		}
		cfg.Timeout = n
	}
	if v := os.Getenv(EnvLogEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvLogEnabled, err)
		}
		cfg.Logging.Enabled = enabled
	}

	cfg.ApplyDefaults()
	return cfg, nil
}
