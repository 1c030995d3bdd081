package config

import (
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("SEED_ADMIN_ID", "6426468905")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "postgres://localhost/debts")
	t.Setenv("TIMEZONE", "UTC")

	s, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.BotToken != "123:abc" || s.SeedAdminID != 6426468905 {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if s.Database.Driver != "postgres" || s.Database.DSN != "postgres://localhost/debts" {
		t.Fatalf("unexpected database settings: %+v", s.Database)
	}
	if s.PollTimeout != 60 || s.HTTPAddr != ":8080" {
		t.Fatalf("expected defaults, got poll=%d http=%q", s.PollTimeout, s.HTTPAddr)
	}
	loc, err := s.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("expected UTC location, got %v %v", loc, err)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("SEED_ADMIN_ID", "1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without token")
	}
}

func TestSettingsValidate(t *testing.T) {
	valid := Settings{
		BotToken:    "t",
		PollTimeout: 60,
		SeedAdminID: 1,
		Timezone:    "Local",
		Database:    DatabaseSettings{Driver: "sqlite", DSN: "debts.db"},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid settings, got %v", err)
	}

	cases := map[string]func(s *Settings){
		"zero seed":      func(s *Settings) { s.SeedAdminID = 0 },
		"bad driver":     func(s *Settings) { s.Database.Driver = "mysql" },
		"empty dsn":      func(s *Settings) { s.Database.DSN = "" },
		"bad timezone":   func(s *Settings) { s.Timezone = "Mars/Olympus" },
		"no poll period": func(s *Settings) { s.PollTimeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := valid
			mutate(&s)
			if err := s.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
