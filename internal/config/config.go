package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// DataDirName is the directory under the user's home that holds the default database and config
const DataDirName = ".leitner"

// Config is the application configuration
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Telegram TelegramConfig `toml:"telegram"`
	Reminder ReminderConfig `toml:"reminder"`
}

// DatabaseConfig selects the storage backend
type DatabaseConfig struct {
	Driver string `toml:"driver"` // sqlite3 or postgres
	DSN    string `toml:"dsn"`    // empty means ~/.leitner/leitner.db for sqlite3
}

// TelegramConfig configures the bot front end
type TelegramConfig struct {
	Token       string  `toml:"token"`
	OwnerChatID int64   `toml:"owner_chat_id"` // the only chat the bot talks to
	SendRate    float64 `toml:"send_rate"`     // outgoing messages per second
	SendBurst   int     `toml:"send_burst"`
}

// ReminderConfig configures the daily due-card reminder
type ReminderConfig struct {
	Enabled  bool   `toml:"enabled"`
	At       string `toml:"at"`       // HH:MM
	Timezone string `toml:"timezone"` // IANA name or Local
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
		},
		Telegram: TelegramConfig{
			SendRate:  1,
			SendBurst: 3,
		},
		Reminder: ReminderConfig{
			Enabled:  false,
			At:       "09:00",
			Timezone: "Local",
		},
	}
}

// DefaultPath returns ~/.leitner/config.toml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, DataDirName, "config.toml"), nil
}

// Load builds the configuration from defaults, the TOML file at path, a .env
// file in the working directory and finally the environment. An empty path
// means the default location, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: could not read .env: %v", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("FLASHCARDS_DB_DRIVER"); ok && v != "" {
		c.Database.Driver = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("FLASHCARDS_DB_DSN"); ok && v != "" {
		c.Database.DSN = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("TELEGRAM_BOT_TOKEN"); ok && v != "" {
		c.Telegram.Token = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("TELEGRAM_OWNER_CHAT_ID"); ok && v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_OWNER_CHAT_ID %q: %w", v, err)
		}
		c.Telegram.OwnerChatID = id
	}
	if v, ok := os.LookupEnv("TELEGRAM_SEND_RATE"); ok && v != "" {
		rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_SEND_RATE %q: %w", v, err)
		}
		c.Telegram.SendRate = rate
	}
	if v, ok := os.LookupEnv("REMINDER_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid REMINDER_ENABLED %q: %w", v, err)
		}
		c.Reminder.Enabled = enabled
	}
	if v, ok := os.LookupEnv("REMINDER_AT"); ok && v != "" {
		c.Reminder.At = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("REMINDER_TIMEZONE"); ok && v != "" {
		c.Reminder.Timezone = strings.TrimSpace(v)
	}
	return nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == DriverPostgres && c.Database.DSN == "" {
		return fmt.Errorf("postgres requires a dsn")
	}

	if _, err := time.Parse("15:04", c.Reminder.At); err != nil {
		return fmt.Errorf("invalid reminder time %q: %w", c.Reminder.At, err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Telegram.SendRate <= 0 {
		return fmt.Errorf("send rate must be positive: %v", c.Telegram.SendRate)
	}
	if c.Telegram.SendBurst < 1 {
		return fmt.Errorf("send burst must be at least 1: %d", c.Telegram.SendBurst)
	}
	return nil
}

// Location returns the reminder time zone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Reminder.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder timezone %q: %w", c.Reminder.Timezone, err)
	}
	return loc, nil
}

// RequireTelegram checks the settings the bot cannot start without
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if c.Telegram.OwnerChatID == 0 {
		return fmt.Errorf("TELEGRAM_OWNER_CHAT_ID is not set")
	}
	return nil
}
