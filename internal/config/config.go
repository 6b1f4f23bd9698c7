package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

type Config struct {
	Addr       string `env:"TASKNOTIFY_ADDR"        envDefault:":8080"`
	DBPath     string `env:"TASKNOTIFY_DB"          envDefault:"site.db"`
	Nickname   string `env:"TASKNOTIFY_NICKNAME"`
	Notifier   string `env:"TASKNOTIFY_NOTIFIER"    envDefault:"desktop"`
	WebhookURL string `env:"TASKNOTIFY_WEBHOOK_URL"`
	Permission string `env:"TASKNOTIFY_PERMISSION"  envDefault:"granted"`
	Speech     bool   `env:"TASKNOTIFY_SPEECH"      envDefault:"true"`
	LogLevel   string `env:"TASKNOTIFY_LOG_LEVEL"   envDefault:"info"`
	LogJSON    bool   `env:"TASKNOTIFY_LOG_JSON"`
}

// FromEnv loads configuration from TASKNOTIFY_* variables, with defaults for
// anything unset.
func FromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Notifier {
	case "desktop", "log", "none":
	case "webhook":
		if c.WebhookURL == "" {
			return fmt.Errorf("notifier webhook needs a webhook URL")
		}
	default:
		return fmt.Errorf("unknown notifier %q", c.Notifier)
	}
	switch c.Permission {
	case "granted", "denied", "default":
	default:
		return fmt.Errorf("unknown permission %q", c.Permission)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}
