package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// CacheBackend selects where api responses are cached
type CacheBackend string

const (
	CacheBackendBolt  CacheBackend = "bolt"
	CacheBackendRedis CacheBackend = "redis"
)

const envPrefix = "MOVIETRACKER"

// Config holds all application configuration
type Config struct {
	TMDB       TMDBConfig       `mapstructure:"tmdb"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Collection CollectionConfig `mapstructure:"collection"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// TMDBConfig holds movie database API settings
type TMDBConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	ImageBaseURL      string        `mapstructure:"image_base_url"`
	Language          string        `mapstructure:"language"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
}

// StorageConfig holds the local database location
type StorageConfig struct {
	Path string `mapstructure:"path"` // empty keeps everything in memory
}

// CacheConfig holds api cache settings
type CacheConfig struct {
	Backend  CacheBackend  `mapstructure:"backend"`
	TTL      time.Duration `mapstructure:"ttl"`
	RedisURL string        `mapstructure:"redis_url"`
}

// CollectionConfig holds listing preferences
type CollectionConfig struct {
	Locale           string `mapstructure:"locale"`
	DefaultSort      string `mapstructure:"default_sort"`
	DefaultDirection string `mapstructure:"default_direction"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p",
			Language:          "en-US",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 20,
			Burst:             5,
			MaxRetries:        2,
		},
		Storage: StorageConfig{
			Path: filepath.Join(defaultDataPath(), "movietracker.db"),
		},
		Cache: CacheConfig{
			Backend: CacheBackendBolt,
			TTL:     24 * time.Hour,
		},
		Collection: CollectionConfig{
			Locale:           "en",
			DefaultSort:      string(domain.SortByAddedDate),
			DefaultDirection: string(domain.SortDesc),
		},
		Logging: LoggingConfig{
			File:       filepath.Join(defaultDataPath(), "movietracker.log"),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// defaultDataPath returns the data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "movietracker")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "movietracker")
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "movietracker")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "movietracker")
	}
}

// newViper returns a viper instance seeded with defaults and env bindings
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return v
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range configValues(cfg) {
		v.SetDefault(key, value)
	}
}

// configValues flattens cfg into snake_case viper keys
func configValues(cfg *Config) map[string]any {
	return map[string]any{
		"tmdb.api_key":                 cfg.TMDB.APIKey,
		"tmdb.base_url":                cfg.TMDB.BaseURL,
		"tmdb.image_base_url":          cfg.TMDB.ImageBaseURL,
		"tmdb.language":                cfg.TMDB.Language,
		"tmdb.timeout":                 cfg.TMDB.Timeout,
		"tmdb.requests_per_second":     cfg.TMDB.RequestsPerSecond,
		"tmdb.burst":                   cfg.TMDB.Burst,
		"tmdb.max_retries":             cfg.TMDB.MaxRetries,
		"storage.path":                 cfg.Storage.Path,
		"cache.backend":                string(cfg.Cache.Backend),
		"cache.ttl":                    cfg.Cache.TTL,
		"cache.redis_url":              cfg.Cache.RedisURL,
		"collection.locale":            cfg.Collection.Locale,
		"collection.default_sort":      cfg.Collection.DefaultSort,
		"collection.default_direction": cfg.Collection.DefaultDirection,
		"logging.file":                 cfg.Logging.File,
		"logging.level":                cfg.Logging.Level,
		"logging.max_size_mb":          cfg.Logging.MaxSizeMB,
		"logging.max_backups":          cfg.Logging.MaxBackups,
		"logging.max_age_days":         cfg.Logging.MaxAgeDays,
	}
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath(DefaultConfigPath())
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}
	return unmarshal(v)
}

// LoadConfigFile loads configuration from an explicit file plus environment
func LoadConfigFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML. An empty path writes to the default location.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = filepath.Join(DefaultConfigPath(), "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	for key, value := range configValues(cfg) {
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		v.Set(key, value)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later at use sites
func (c *Config) Validate() error {
	var errs []error

	switch c.Cache.Backend {
	case CacheBackendBolt:
	case CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("cache.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.backend %q", c.Cache.Backend))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL))
	}
	if _, err := domain.ParseSortField(c.Collection.DefaultSort); err != nil {
		errs = append(errs, fmt.Errorf("collection.default_sort: %w", err))
	}
	if _, err := domain.ParseSortDirection(c.Collection.DefaultDirection); err != nil {
		errs = append(errs, fmt.Errorf("collection.default_direction: %w", err))
	}
	if _, err := language.Parse(c.Collection.Locale); err != nil {
		errs = append(errs, fmt.Errorf("collection.locale: %w", err))
	}
	if c.TMDB.RequestsPerSecond < 0 || c.TMDB.MaxRetries < 0 {
		errs = append(errs, errors.New("tmdb rate and retry settings must not be negative"))
	}
	return errors.Join(errs...)
}

// Locale returns the parsed collation locale, falling back to English
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.Collection.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// IsConfigured returns true if an API key is set
func (c *Config) IsConfigured() bool {
	return c.TMDB.APIKey != ""
}
