package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	FeedBaseURL           string        `mapstructure:"feed_base_url"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`

	DispatchersFile string `mapstructure:"dispatchers_file"`

	SendIntervalMinSeconds int64         `mapstructure:"send_interval_min_seconds"`
	SendIntervalMaxSeconds int64         `mapstructure:"send_interval_max_seconds"`
	SendIntervalMin        time.Duration `mapstructure:"-"`
	SendIntervalMax        time.Duration `mapstructure:"-"`
	MaxPickAttempts        int           `mapstructure:"max_pick_attempts"`

	StorageType           string        `mapstructure:"storage_type"`
	BBoltPath             string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds     int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL            time.Duration `mapstructure:"-"`
	StorageCleanup        time.Duration `mapstructure:"-"`

	PickerAPIURL string `mapstructure:"picker_api_url"`
	PickerAPIKey string `mapstructure:"picker_api_key"`
	PickerModel  string `mapstructure:"picker_model"`
}

// Sanitized returns a copy of the config safe for logging. Credential
// fields are masked so they never reach the log stream.
func (c *Config) Sanitized() Config {
	out := *c
	if out.PickerAPIKey != "" {
		out.PickerAPIKey = "***"
	}
	return out
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-news-sender")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("feed_base_url", "http://0.0.0.0:8000")
	v.SetDefault("request_timeout_seconds", 10)
	v.SetDefault("dispatchers_file", "./configs/dispatchers.yaml")
	v.SetDefault("send_interval_min_seconds", int64((30*time.Minute)/time.Second))
	v.SetDefault("send_interval_max_seconds", int64((50*time.Minute)/time.Second))
	v.SetDefault("max_pick_attempts", 3)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/sent.db")
	v.SetDefault("storage_ttl_seconds", int64((5*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("picker_api_url", "https://api.openai.com/v1")
	v.SetDefault("picker_api_key", "")
	v.SetDefault("picker_model", "gpt-4o")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.FeedBaseURL == "" {
		return nil, fmt.Errorf("feed_base_url must not be empty")
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.SendIntervalMinSeconds <= 0 || cfg.SendIntervalMaxSeconds <= 0 {
		return nil, fmt.Errorf("invalid send interval (must be positive seconds)")
	}
	if cfg.SendIntervalMaxSeconds < cfg.SendIntervalMinSeconds {
		return nil, fmt.Errorf("send_interval_max_seconds must be >= send_interval_min_seconds")
	}
	cfg.SendIntervalMin = time.Duration(cfg.SendIntervalMinSeconds) * time.Second
	cfg.SendIntervalMax = time.Duration(cfg.SendIntervalMaxSeconds) * time.Second

	if cfg.MaxPickAttempts <= 0 {
		return nil, fmt.Errorf("invalid max_pick_attempts (must be positive)")
	}

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanup = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
