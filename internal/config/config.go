// Package config loads rentals settings from config.yaml, the environment
// and .env files, and builds the process logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/rentals/internal/paths"
)

// EnvPrefix prefixes environment overrides, e.g. RENTALS_API_URL.
const EnvPrefix = "RENTALS"

// Config keys.
const (
	KeyAPIURL         = "api_url"
	KeyTimeout        = "timeout"
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
	KeyMarkerWindow   = "ui.marker_window"
	KeyBannerWindow   = "ui.banner_window"
	KeyServerAddr     = "server.addr"
	KeyServerDataDir  = "server.data_dir"
	KeyServerTokenTTL = "server.token_ttl"
	KeyExpirySchedule = "server.expiry_schedule"
)

// Defaults.
const (
	DefaultAPIURL         = "http://localhost:8080"
	DefaultTimeout        = 15 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultServerAddr     = ":8080"
	DefaultTokenTTL       = 8 * time.Hour
	DefaultExpirySchedule = "0 0 * * *"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# rentals configuration

# Base URL of the rentals API
api_url: http://localhost:8080
timeout: 15s

log:
  level: info   # debug, info, warn, error
  format: text  # text or json

ui:
  marker_window: 2s
  banner_window: 3s

server:
  addr: ":8080"
  # data_dir:
  token_ttl: 8h
  expiry_schedule: "0 0 * * *"
`

// Config is the resolved configuration.
type Config struct {
	APIURL  string        `mapstructure:"api_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Log     LogConfig     `mapstructure:"log"`
	UI      UIConfig      `mapstructure:"ui"`
	Server  ServerConfig  `mapstructure:"server"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UIConfig holds the transient-state windows of the resource stores.
type UIConfig struct {
	MarkerWindow time.Duration `mapstructure:"marker_window"`
	BannerWindow time.Duration `mapstructure:"banner_window"`
}

// ServerConfig configures the reference API server.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	DataDir        string        `mapstructure:"data_dir"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	ExpirySchedule string        `mapstructure:"expiry_schedule"`
}

// Load reads configuration from configDir. It creates the directory and a
// default config.yaml on first run. A .env file in configDir or in the
// working directory is loaded into the environment first; variables already
// set win.
func Load(configDir string) (Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return Config{}, fmt.Errorf("ensure default config: %w", err)
	}
	loadDotEnv(configDir)

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyMarkerWindow, 2*time.Second)
	v.SetDefault(KeyBannerWindow, 3*time.Second)
	v.SetDefault(KeyServerAddr, DefaultServerAddr)
	v.SetDefault(KeyServerDataDir, "")
	v.SetDefault(KeyServerTokenTTL, DefaultTokenTTL)
	v.SetDefault(KeyExpirySchedule, DefaultExpirySchedule)
}

func loadDotEnv(configDir string) {
	for _, p := range []string{paths.EnvFile(configDir), paths.EnvFileName} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// Validate checks values viper cannot type-check.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config %s: %q is not an absolute URL", KeyAPIURL, c.APIURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config %s: must not be negative", KeyTimeout)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config %s: %q is not text or json", KeyLogFormat, c.Log.Format)
	}
	if c.Server.TokenTTL < 0 {
		return fmt.Errorf("config %s: must not be negative", KeyServerTokenTTL)
	}
	return nil
}

// NewLogger builds the process logger writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config %s: %q is not a log level", KeyLogLevel, s)
	}
	return l, nil
}
