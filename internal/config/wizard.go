package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// Answers holds the values collected by the setup wizard.
type Answers struct {
	BotName       string
	Token         string
	ChatID        string
	TopicID       string
	EnableLogging bool
	LogLevel      string
}

// Config turns the answers into a validated single-bot configuration.
func (a Answers) Config() (*Config, error) {
	name := strings.TrimSpace(a.BotName)
	if name == "" {
		name = defaultEnvName
	}
	cfg := &Config{
		Version: "1",
		Default: name,
		Bots: map[string]BotConfig{
			name: {
				Token:   strings.TrimSpace(a.Token),
				ChatID:  strings.TrimSpace(a.ChatID),
				TopicID: strings.TrimSpace(a.TopicID),
			},
		},
		Logging: LoggingConfig{
			Enabled: a.EnableLogging,
			Level:   a.LogLevel,
		},
	}
	cfg.ApplyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunWizard prompts for a bot token and default chat on the terminal.
func RunWizard(ctx context.Context) (*Config, error) {
	a := Answers{BotName: defaultEnvName, LogLevel: "error"}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bot name").
				Description("Used to pick this bot from the command line.").
				Value(&a.BotName).
				Validate(checkBotName),
			huh.NewInput().
				Title("Bot token").
				Description("From @BotFather, e.g. 123456:ABC-DEF...").
				EchoMode(huh.EchoModePassword).
				Value(&a.Token).
				Validate(checkToken),
			huh.NewInput().
				Title("Default chat ID").
				Description("Numeric ID or @channelusername. Leave empty to always pass --chat.").
				Value(&a.ChatID).
				Validate(checkChatID),
			huh.NewInput().
				Title("Forum topic ID").
				Description("Optional.").
				Value(&a.TopicID).
				Validate(checkTopicID),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Send application logs to the default chat?").
				Value(&a.EnableLogging),
			huh.NewSelect[string]().
				Title("Minimum log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&a.LogLevel),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, fmt.Errorf("config: wizard aborted: %w", err)
		}
		return nil, fmt.Errorf("config: wizard: %w", err)
	}
	return a.Config()
}

func checkBotName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("bot name is required")
	}
	return nil
}

func checkToken(s string) error {
	if !tokenPattern.MatchString(strings.TrimSpace(s)) {
		return errors.New("expected <bot id>:<secret>")
	}
	return nil
}

func checkChatID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "@") {
		return nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return errors.New("expected a numeric ID or @username")
	}
	return nil
}

func checkTopicID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.Atoi(s); err != nil {
		return errors.New("expected a number")
	}
	return nil
}
