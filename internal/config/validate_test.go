package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Version: "1",
		Default: "main",
		Timeout: 10,
		Bots: map[string]BotConfig{
			"main":   {Token: "123456:ABC-def_ghi", ChatID: "-100123"},
			"alerts": {Token: "654321:xyz", ChatID: "@ops"},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	if err := Validate(validConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_FieldRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "missing version",
			mutate: func(c *Config) { c.Version = "" },
			want:   "version is required",
		},
		{
			name:   "unsupported version",
			mutate: func(c *Config) { c.Version = "2" },
			want:   `unsupported version "2"`,
		},
		{
			name:   "no bots",
			mutate: func(c *Config) { c.Bots = nil; c.Default = "" },
			want:   "bots is required",
		},
		{
			name: "malformed token",
			mutate: func(c *Config) {
				c.Bots["main"] = BotConfig{Token: "not-a-token"}
			},
			want: "bots.main.token is not a valid bot token",
		},
		{
			name: "empty token",
			mutate: func(c *Config) {
				c.Bots["alerts"] = BotConfig{ChatID: "@ops"}
			},
			want: "bots.alerts.token is required",
		},
		{
			name: "non-numeric topic",
			mutate: func(c *Config) {
				c.Bots["main"] = BotConfig{Token: "1:a", TopicID: "general"}
			},
			want: "bots.main.topic_id failed numeric",
		},
		{
			name:   "bad api url",
			mutate: func(c *Config) { c.APIBaseURL = "::nope" },
			want:   "api_base_url",
		},
		{
			name:   "timeout too large",
			mutate: func(c *Config) { c.Timeout = 3600 },
			want:   "timeout",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "loud" },
			want:   "must be one of",
		},
		{
			name:   "webhook path",
			mutate: func(c *Config) { c.Webhook.Path = "hook" },
			want:   "webhook.path",
		},
		{
			name: "schedule without text",
			mutate: func(c *Config) {
				c.Schedules = []ScheduleConfig{{Name: "daily", Schedule: "@daily"}}
			},
			want: "text is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestValidate_UnknownDefaultBot(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Default = "missing"
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), `default bot "missing" is not defined (bots: alerts, main)`) {
		t.Errorf("error = %v", err)
	}
}

func TestValidate_LoggingNeedsChat(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Bots["silent"] = BotConfig{Token: "1:a"}
	cfg.Logging = LoggingConfig{Enabled: true, Bot: "silent"}
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "no chat_id") {
		t.Fatalf("error = %v", err)
	}

	cfg.Logging.ChatID = "42"
	if err := Validate(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_LoggingDisabledIgnoresBot(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Logging = LoggingConfig{Bot: "ghost"}
	if err := Validate(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_WebhookBot(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Webhook.Bot = "ghost"
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), `webhook.bot "ghost"`) {
		t.Errorf("error = %v", err)
	}
}

func TestValidate_Schedules(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Schedules = []ScheduleConfig{
		{Name: "ok", Schedule: "0 9 * * 1-5", Text: "standup"},
		{Name: "ok", Schedule: "@hourly", Text: "dup"},
		{Name: "bad-cron", Schedule: "every day", Text: "x"},
		{Name: "ghost", Schedule: "@daily", Bot: "ghost", Text: "x"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{
		`schedules[1]: duplicate name "ok"`,
		`schedules[2]: invalid schedule "every day"`,
		`schedules[3]: bot "ghost" is not defined`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
	if strings.Contains(err.Error(), "schedules[0]") {
		t.Errorf("valid schedule reported:\n%v", err)
	}
}

func TestValidate_ScheduleNeedsChat(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Bots["nochat"] = BotConfig{Token: "1:a"}
	cfg.Schedules = []ScheduleConfig{{Name: "n", Schedule: "@daily", Bot: "nochat", Text: "x"}}

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "no chat_id on the schedule or its bot") {
		t.Errorf("error = %v", err)
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Version = "9"
	cfg.Default = "ghost"
	cfg.Webhook.Bot = "ghost"
	cfg.Bots["main"] = BotConfig{Token: "bad"}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if n := strings.Count(err.Error(), "config:"); n != 4 {
		t.Errorf("error count = %d, want 4:\n%v", n, err)
	}
}
