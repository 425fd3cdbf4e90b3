// internal/config/config.go
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/codr1/courtbook/internal/slots"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
	URL      string `yaml:"url,omitempty"` // Overridden by DATABASE_URL
}

type ScheduleConfig struct {
	Open        string `yaml:"open"`
	Close       string `yaml:"close"`
	SlotMinutes int    `yaml:"slot_minutes"`
}

type BookingConfig struct {
	AllowPast      bool `yaml:"allow_past"`
	MaxAdvanceDays int  `yaml:"max_advance_days"`
}

type AuthConfig struct {
	TokenTTL         Duration `yaml:"token_ttl"`
	LoginMaxAttempts int      `yaml:"login_max_attempts"`
	LoginLockout     Duration `yaml:"login_lockout"`
	TrustProxy       bool     `yaml:"trust_proxy"`
	// PhoneRegion is the region assumed for phone numbers without a
	// country prefix.
	PhoneRegion string `yaml:"phone_region"`
}

type JobsConfig struct {
	TokenPurgeCron string `yaml:"token_purge_cron"`
}

type SeedCourt struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type SeedAdmin struct {
	Name     string
	Email    string
	Password string `yaml:"-"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		Timezone    string `yaml:"timezone"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Booking  BookingConfig  `yaml:"booking"`
	Auth     AuthConfig     `yaml:"auth"`
	Jobs     JobsConfig     `yaml:"jobs"`

	Seed struct {
		Courts []SeedCourt `yaml:"courts"`
		Admin  SeedAdmin   `yaml:"-"` // Loaded from environment
	} `yaml:"seed"`
}

// envOverrides are read with envconfig after the YAML file. Empty values
// leave the YAML setting untouched.
type envOverrides struct {
	Environment   string `envconfig:"ENVIRONMENT"`
	Port          int    `envconfig:"PORT"`
	SecretKey     string `envconfig:"APP_SECRET_KEY"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	Timezone      string `envconfig:"APP_TIMEZONE"`
	AdminName     string `envconfig:"ADMIN_NAME" default:"Administrator"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

// Duration decodes YAML strings such as "90m" or "24h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.App.Name = "Courtbook"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.App.BaseURL = "http://localhost:8080"
	cfg.App.Timezone = "Local"
	cfg.Database = DatabaseConfig{Driver: DriverSQLite, Filename: "data/courtbook.db"}
	cfg.Schedule = ScheduleConfig{Open: "09:00", Close: "22:00", SlotMinutes: 90}
	cfg.Auth = AuthConfig{
		TokenTTL:         Duration(24 * time.Hour),
		LoginMaxAttempts: 5,
		LoginLockout:     Duration(5 * time.Minute),
		PhoneRegion:      "ES",
	}
	cfg.Jobs.TokenPurgeCron = "0 * * * *"
	cfg.Seed.Courts = []SeedCourt{{Name: "Pista 1", Type: "padel"}}
	return &cfg
}

// Load loads .env, the YAML file and environment overrides, in that order.
// A missing YAML file is not an error; defaults are used instead.
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.App.SecretKey == "" && cfg.IsDevelopment() {
		key, err := randomKey()
		if err != nil {
			return nil, fmt.Errorf("error generating development secret: %w", err)
		}
		cfg.App.SecretKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("error reading environment: %w", err)
	}

	if env.Environment != "" {
		c.App.Environment = env.Environment
	}
	if env.Port != 0 {
		c.App.Port = env.Port
	}
	if env.Timezone != "" {
		c.App.Timezone = env.Timezone
	}
	if env.DatabaseURL != "" {
		c.Database.URL = env.DatabaseURL
	}
	c.App.SecretKey = env.SecretKey
	c.Seed.Admin = SeedAdmin{
		Name:     env.AdminName,
		Email:    strings.TrimSpace(env.AdminEmail),
		Password: env.AdminPassword,
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.App.SecretKey == "" {
		return fmt.Errorf("APP_SECRET_KEY is required outside development")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Window(); err != nil {
		return err
	}
	if c.Booking.MaxAdvanceDays < 0 {
		return fmt.Errorf("booking max_advance_days must not be negative")
	}
	if c.Auth.TokenTTL.Std() <= 0 {
		return fmt.Errorf("auth token_ttl must be positive")
	}
	if c.Auth.LoginMaxAttempts <= 0 {
		return fmt.Errorf("auth login_max_attempts must be positive")
	}
	if c.Jobs.TokenPurgeCron != "" {
		if _, err := cron.ParseStandard(c.Jobs.TokenPurgeCron); err != nil {
			return fmt.Errorf("invalid jobs token_purge_cron %q: %w", c.Jobs.TokenPurgeCron, err)
		}
	}
	for i, court := range c.Seed.Courts {
		if strings.TrimSpace(court.Name) == "" {
			return fmt.Errorf("seed court %d: name is required", i)
		}
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	return nil
}

// Location is the single timezone slot instants are interpreted in.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.App.Timezone)
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid app timezone %q: %w", name, err)
	}
	return loc, nil
}

// Window builds the slot grid from the schedule section.
func (c *Config) Window() (slots.Window, error) {
	open, err := slots.ParseTimeOfDay(c.Schedule.Open)
	if err != nil {
		return slots.Window{}, fmt.Errorf("schedule open: %w", err)
	}
	closeAt, err := slots.ParseTimeOfDay(c.Schedule.Close)
	if err != nil {
		return slots.Window{}, fmt.Errorf("schedule close: %w", err)
	}
	window := slots.Window{
		Open:     open,
		Close:    closeAt,
		Duration: time.Duration(c.Schedule.SlotMinutes) * time.Minute,
	}
	if err := window.Validate(); err != nil {
		return slots.Window{}, err
	}
	return window, nil
}

func randomKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
