package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/username/year-dots/internal/calendar"
)

// Config represents application configuration
type Config struct {
	Year     int            `mapstructure:"year"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Counter  CounterConfig  `mapstructure:"counter"`
	Theme    ThemeConfig    `mapstructure:"theme"`
	Server   ServerConfig   `mapstructure:"server"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// StorageConfig represents day state persistence configuration
type StorageConfig struct {
	Backend    string `mapstructure:"backend"` // "json" or "sqlite"
	Dir        string `mapstructure:"dir"`
	Key        string `mapstructure:"key"` // "{year}" is replaced with the configured year
	SQLitePath string `mapstructure:"sqlite_path"`
	BlobDir    string `mapstructure:"blob_dir"`
}

// CounterConfig represents dot-matrix counter configuration
type CounterConfig struct {
	FixedColumns bool `mapstructure:"fixed_columns"`
	CellPx       int  `mapstructure:"cell_px"` // approximate pixels per terminal column
}

// ThemeConfig represents color theme configuration
type ThemeConfig struct {
	Mode string `mapstructure:"mode"` // "dark" or "light"
	File string `mapstructure:"file"` // remembers toggles across runs
}

// ServerConfig represents HTTP API configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	ReminderTime string `mapstructure:"reminder_time"` // HH:MM in Timezone
	Timezone     string `mapstructure:"timezone"`
	LogFile      string `mapstructure:"log_file"`
	LogLevel     string `mapstructure:"log_level"`
	SystemTray   bool   `mapstructure:"system_tray"` // Show system tray icon (Windows only)
}

// TelegramConfig represents reminder bot configuration
type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Year: time.Now().Year(),
		Storage: StorageConfig{
			Backend:    "json",
			Dir:        "data",
			Key:        "yearDots{year}",
			SQLitePath: "data/year-dots.db",
			BlobDir:    "data/selfies",
		},
		Counter: CounterConfig{
			CellPx: 8,
		},
		Theme: ThemeConfig{
			Mode: "dark",
			File: "data/theme",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Daemon: DaemonConfig{
			ReminderTime: "21:00",
			LogLevel:     "info",
		},
	}
}

// Load loads configuration from file. A missing file at the default path
// falls back to Default().
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.year-dots")
	}

	// Read environment variables
	v.SetEnvPrefix("YEARDOTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("year", d.Year)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.key", d.Storage.Key)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.blob_dir", d.Storage.BlobDir)
	v.SetDefault("counter.fixed_columns", d.Counter.FixedColumns)
	v.SetDefault("counter.cell_px", d.Counter.CellPx)
	v.SetDefault("theme.mode", d.Theme.Mode)
	v.SetDefault("theme.file", d.Theme.File)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("daemon.reminder_time", d.Daemon.ReminderTime)
	v.SetDefault("daemon.timezone", d.Daemon.Timezone)
	v.SetDefault("daemon.log_file", d.Daemon.LogFile)
	v.SetDefault("daemon.log_level", d.Daemon.LogLevel)
	v.SetDefault("daemon.system_tray", d.Daemon.SystemTray)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Year < 1 || c.Year > calendar.MaxYear {
		return fmt.Errorf("year must be between 1 and %d, got %d", calendar.MaxYear, c.Year)
	}

	switch c.Storage.Backend {
	case "json":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for json backend")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for sqlite backend")
		}
	default:
		return fmt.Errorf("storage.backend must be 'json' or 'sqlite', got '%s'", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key is required")
	}
	if strings.ContainsAny(c.StorageKey(), `/\`) {
		return fmt.Errorf("storage.key must not contain path separators")
	}

	if c.Counter.CellPx < 0 {
		return fmt.Errorf("counter.cell_px must not be negative")
	}

	if c.Theme.Mode != "dark" && c.Theme.Mode != "light" {
		return fmt.Errorf("theme.mode must be 'dark' or 'light', got '%s'", c.Theme.Mode)
	}

	if _, _, err := parseClock(c.Daemon.ReminderTime); err != nil {
		return fmt.Errorf("daemon.reminder_time: %w", err)
	}
	if c.Daemon.Timezone != "" {
		if _, err := time.LoadLocation(c.Daemon.Timezone); err != nil {
			return fmt.Errorf("daemon.timezone: %w", err)
		}
	}

	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required when telegram.token is set")
	}

	return nil
}

// StorageKey returns the storage key with {year} expanded
func (c *Config) StorageKey() string {
	return strings.ReplaceAll(c.Storage.Key, "{year}", strconv.Itoa(c.Year))
}

// GetCellPx returns the pixel width assumed per terminal column
func (c *CounterConfig) GetCellPx() int {
	if c.CellPx <= 0 {
		return 8
	}
	return c.CellPx
}

// GetReminderTime returns the configured reminder time.
// Returns hour and minute (0-23, 0-59). Default: 21:00
func (c *DaemonConfig) GetReminderTime() (hour, minute int) {
	h, m, err := parseClock(c.ReminderTime)
	if err != nil {
		return 21, 0
	}
	return h, m
}

// GetLocation returns the daemon time zone, time.Local when unset
func (c *DaemonConfig) GetLocation() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Enabled reports whether telegram reminders are configured
func (c *TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ChatID != 0
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Telegram.Token = os.ExpandEnv(c.Telegram.Token)
	c.Storage.Dir = os.ExpandEnv(c.Storage.Dir)
	c.Storage.SQLitePath = os.ExpandEnv(c.Storage.SQLitePath)
	c.Storage.BlobDir = os.ExpandEnv(c.Storage.BlobDir)
	c.Theme.File = os.ExpandEnv(c.Theme.File)
}

func parseClock(s string) (hour, minute int, err error) {
	if s == "" {
		return 21, 0, nil
	}
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: %q", s)
	}
	return hour, minute, nil
}
