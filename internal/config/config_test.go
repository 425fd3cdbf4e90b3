package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("APP_SECRET_KEY", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.App.Port)
	}
	if cfg.App.SecretKey == "" {
		t.Fatal("expected development secret to be generated")
	}

	window, err := cfg.Window()
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if window.Open.String() != "09:00" || window.Close.String() != "22:00" || window.Duration != 90*time.Minute {
		t.Fatalf("unexpected default window %+v", window)
	}
}

func TestLoadYAMLAndEnvironment(t *testing.T) {
	t.Setenv("APP_SECRET_KEY", "from-env")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "9090")
	t.Setenv("ADMIN_EMAIL", " admin@example.com ")
	t.Setenv("ADMIN_PASSWORD", "changeme123")

	path := writeConfig(t, `app:
  name: "Club"
  environment: "production"
  port: 8081
  timezone: "Europe/Madrid"
database:
  driver: "sqlite"
  filename: "club.db"
schedule:
  open: "08:00"
  close: "20:00"
  slot_minutes: 60
booking:
  max_advance_days: 14
auth:
  token_ttl: "2h"
  login_max_attempts: 3
  login_lockout: "10m"
jobs:
  token_purge_cron: "*/30 * * * *"
seed:
  courts:
    - name: "Central"
      type: "indoor"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != 9090 {
		t.Fatalf("expected env port override, got %d", cfg.App.Port)
	}
	if cfg.App.SecretKey != "from-env" {
		t.Fatalf("expected secret from env, got %q", cfg.App.SecretKey)
	}
	if cfg.Auth.TokenTTL.Std() != 2*time.Hour {
		t.Fatalf("expected 2h token ttl, got %v", cfg.Auth.TokenTTL.Std())
	}
	if cfg.Booking.MaxAdvanceDays != 14 {
		t.Fatalf("expected 14 max advance days, got %d", cfg.Booking.MaxAdvanceDays)
	}
	if cfg.Seed.Admin.Email != "admin@example.com" {
		t.Fatalf("expected trimmed admin email, got %q", cfg.Seed.Admin.Email)
	}
	if len(cfg.Seed.Courts) != 1 || cfg.Seed.Courts[0].Name != "Central" {
		t.Fatalf("unexpected seed courts %+v", cfg.Seed.Courts)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "Europe/Madrid" {
		t.Fatalf("expected Europe/Madrid, got %s", loc)
	}

	window, err := cfg.Window()
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if window.Duration != time.Hour || window.Open.String() != "08:00" {
		t.Fatalf("unexpected window %+v", window)
	}
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_SECRET_KEY", "")
	t.Setenv("ENVIRONMENT", "")
	path := writeConfig(t, "app:\n  environment: \"production\"\n")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "APP_SECRET_KEY") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported database driver"},
		{"postgres without url", func(c *Config) { c.Database.Driver = DriverPostgres }, "database URL is required"},
		{"bad cron", func(c *Config) { c.Jobs.TokenPurgeCron = "every hour" }, "token_purge_cron"},
		{"window reversed", func(c *Config) { c.Schedule.Open = "23:00" }, "invalid operating window"},
		{"bad slot time", func(c *Config) { c.Schedule.Close = "10pm" }, "schedule close"},
		{"bad timezone", func(c *Config) { c.App.Timezone = "Mars/Olympus" }, "invalid app timezone"},
		{"negative advance", func(c *Config) { c.Booking.MaxAdvanceDays = -1 }, "max_advance_days"},
		{"unnamed seed court", func(c *Config) { c.Seed.Courts = []SeedCourt{{Name: " "}} }, "seed court 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.App.SecretKey = "secret"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
