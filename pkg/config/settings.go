package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Settings is the process configuration read from the environment once at startup.
type Settings struct {
	BotToken    string `env:"TELEGRAM_BOT_TOKEN" env-required:"true"`
	PollTimeout int    `env:"TELEGRAM_POLL_TIMEOUT" env-default:"60"`
	SeedAdminID int64  `env:"SEED_ADMIN_ID" env-required:"true"`
	Timezone    string `env:"TIMEZONE" env-default:"Local"`
	TextsFile   string `env:"BOT_TEXTS_FILE" env-default:""`
	HTTPAddr    string `env:"HTTP_ADDR" env-default:":8080"`
	Database    DatabaseSettings
}

type DatabaseSettings struct {
	Driver string `env:"DATABASE_DRIVER" env-default:"sqlite"`
	DSN    string `env:"DATABASE_DSN" env-default:"debts.db"`
}

// Load reads Settings from the environment and validates them.
func Load() (Settings, error) {
	var s Settings
	if err := cleanenv.ReadEnv(&s); err != nil {
		return Settings{}, fmt.Errorf("read env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	if s.BotToken == "" {
		return fmt.Errorf("settings validation failed: TELEGRAM_BOT_TOKEN is empty")
	}
	if s.SeedAdminID == 0 {
		return fmt.Errorf("settings validation failed: SEED_ADMIN_ID must be a non-zero user id")
	}
	if s.PollTimeout <= 0 {
		return fmt.Errorf("settings validation failed: TELEGRAM_POLL_TIMEOUT must be positive, got %d", s.PollTimeout)
	}
	switch s.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("settings validation failed: unsupported DATABASE_DRIVER %q", s.Database.Driver)
	}
	if s.Database.DSN == "" {
		return fmt.Errorf("settings validation failed: DATABASE_DSN is empty")
	}
	if _, err := s.Location(); err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}
	return nil
}

// Location resolves Timezone; "Local" and "" mean the host zone.
func (s Settings) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown TIMEZONE %q: %w", s.Timezone, err)
	}
	return loc, nil
}
