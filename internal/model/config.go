package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Grouping names a due-date bucket layout.
const (
	GroupingRolling  = "rolling"
	GroupingCalendar = "calendar"
)

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	// Path is the SQLite file. ":memory:" keeps everything in memory.
	Path string `mapstructure:"path" yaml:"path"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// Grouping is "rolling" or "calendar".
	Grouping string `mapstructure:"grouping" yaml:"grouping"`

	// WeekStart is the first day of the week for the calendar layout,
	// e.g. "sunday" or "monday".
	WeekStart string `mapstructure:"week_start" yaml:"week_start"`

	ShowCompleted bool `mapstructure:"show_completed" yaml:"show_completed"`
}

// MinCacheEntries is the smallest bounded cache that holds every key one
// page reads at once. A smaller cache would evict a page's own keys while
// it reloads them.
const MinCacheEntries = 16

// CacheConfig holds query cache settings.
type CacheConfig struct {
	// MaxEntries bounds the cache with an LRU policy. 0 means unbounded,
	// otherwise it must be at least MinCacheEntries.
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries"`

	// RollbackOnError restores the pre-mutation value when a write fails.
	RollbackOnError bool `mapstructure:"rollback_on_error" yaml:"rollback_on_error"`
}

// LogConfig controls where diagnostic logs go.
type LogConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskplanner/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskplanner", "config.yaml")
}

// DefaultDBPath returns ~/.config/taskplanner/tasks.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tasks.db"
	}
	return filepath.Join(home, ".config", "taskplanner", "tasks.db")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{Path: DefaultDBPath()},
		Display: DisplayConfig{
			Grouping:      GroupingRolling,
			WeekStart:     "sunday",
			ShowCompleted: true,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := DefaultAppConfig()
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("display.grouping", def.Display.Grouping)
	v.SetDefault("display.week_start", def.Display.WeekStart)
	v.SetDefault("display.show_completed", def.Display.ShowCompleted)
	v.SetDefault("cache.max_entries", 0)
	v.SetDefault("cache.rollback_on_error", false)
	v.SetDefault("log.file", "")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return def, nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return def, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects values the application cannot act on.
func (c *AppConfig) Validate() error {
	switch c.Display.Grouping {
	case GroupingRolling, GroupingCalendar:
	default:
		return fmt.Errorf("display.grouping must be %q or %q, got %q",
			GroupingRolling, GroupingCalendar, c.Display.Grouping)
	}
	if _, err := ParseWeekday(c.Display.WeekStart); err != nil {
		return fmt.Errorf("display.week_start: %w", err)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.MaxEntries > 0 && c.Cache.MaxEntries < MinCacheEntries {
		return fmt.Errorf("cache.max_entries must be 0 or at least %d, got %d", MinCacheEntries, c.Cache.MaxEntries)
	}
	return nil
}

// ParseWeekday accepts full or three-letter English day names.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("display", cfg.Display)
	v.Set("cache", cfg.Cache)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
