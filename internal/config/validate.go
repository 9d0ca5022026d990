package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("token", func(fl validator.FieldLevel) bool {
		return tokenPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks the structural validity of a Config. Field rules come
// from struct tags; cross references between sections are checked here.
// All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if err := validate.Struct(cfg); err != nil {
		errs = append(errs, fieldErrors(err, "")...)
	}

	// Map values are not walked by the struct pass.
	for _, name := range cfg.botNames() {
		if err := validate.Struct(cfg.Bots[name]); err != nil {
			errs = append(errs, fieldErrors(err, "bots."+name+".")...)
		}
	}

	if cfg.Default != "" {
		if _, ok := cfg.Bots[cfg.Default]; !ok {
			errs = append(errs, fmt.Errorf("config: default bot %q is not defined (bots: %s)", cfg.Default, strings.Join(cfg.botNames(), ", ")))
		}
	}

	errs = append(errs, validateLogging(cfg)...)
	errs = append(errs, validateWebhook(cfg)...)
	errs = append(errs, validateSchedules(cfg)...)

	return errors.Join(errs...)
}

func validateLogging(cfg *Config) []error {
	l := cfg.Logging
	if !l.Enabled {
		return nil
	}
	var errs []error
	bot, ok := cfg.Bots[cfg.botOrDefault(l.Bot)]
	if !ok {
		errs = append(errs, fmt.Errorf("config: logging.bot %q is not defined", l.Bot))
	}
	if l.ChatID == "" && bot.ChatID == "" {
		errs = append(errs, errors.New("config: logging is enabled but no chat_id is set on logging or its bot"))
	}
	return errs
}

func validateWebhook(cfg *Config) []error {
	if cfg.Webhook.Bot == "" {
		return nil
	}
	if _, ok := cfg.Bots[cfg.Webhook.Bot]; !ok {
		return []error{fmt.Errorf("config: webhook.bot %q is not defined", cfg.Webhook.Bot)}
	}
	return nil
}

func validateSchedules(cfg *Config) []error {
	var errs []error
	seen := make(map[string]bool, len(cfg.Schedules))
	for i, s := range cfg.Schedules {
		if s.Name != "" {
			if seen[s.Name] {
				errs = append(errs, fmt.Errorf("config: schedules[%d]: duplicate name %q", i, s.Name))
			}
			seen[s.Name] = true
		}
		if s.Schedule != "" {
			if _, err := cron.ParseStandard(s.Schedule); err != nil {
				errs = append(errs, fmt.Errorf("config: schedules[%d]: invalid schedule %q: %w", i, s.Schedule, err))
			}
		}
		bot, ok := cfg.Bots[cfg.botOrDefault(s.Bot)]
		if !ok {
			errs = append(errs, fmt.Errorf("config: schedules[%d]: bot %q is not defined", i, s.Bot))
			continue
		}
		if s.ChatID == "" && bot.ChatID == "" {
			errs = append(errs, fmt.Errorf("config: schedules[%d]: no chat_id on the schedule or its bot", i))
		}
	}
	return errs
}

// fieldErrors converts a validator result into config errors whose paths
// are the YAML keys, prefixed with prefix.
func fieldErrors(err error, prefix string) []error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{fmt.Errorf("config: %w", err)}
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError(fe, prefix))
	}
	return out
}

func fieldError(fe validator.FieldError, prefix string) error {
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	path = prefix + path
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("config: %s is required", path)
	case "token":
		return fmt.Errorf("config: %s is not a valid bot token", path)
	case "eq":
		return fmt.Errorf("config: unsupported %s %q (supported: %q)", path, fe.Value(), fe.Param())
	case "oneof":
		return fmt.Errorf("config: %s must be one of [%s], got %q", path, fe.Param(), fe.Value())
	default:
		if fe.Param() != "" {
			return fmt.Errorf("config: %s failed %s=%s", path, fe.Tag(), fe.Param())
		}
		return fmt.Errorf("config: %s failed %s", path, fe.Tag())
	}
}

func (c *Config) botOrDefault(name string) string {
	if name == "" {
		return c.Default
	}
	return name
}

func (c *Config) botNames() []string {
	names := make([]string, 0, len(c.Bots))
	for name := range c.Bots {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
