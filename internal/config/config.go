package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken string          `yaml:"discord_token" toml:"discord_token"`
	LogLevel     string          `yaml:"log_level" toml:"log_level"`
	Store        StoreConfig     `yaml:"store" toml:"store"`
	Dashboard    DashboardConfig `yaml:"dashboard" toml:"dashboard"`
	Cache        CacheConfig     `yaml:"cache" toml:"cache"`
	Embeds       EmbedConfig     `yaml:"embeds" toml:"embeds"`
}

type StoreConfig struct {
	// Driver is one of bolt, sqlite, postgres or memory.
	Driver string `yaml:"driver" toml:"driver"`
	Path   string `yaml:"path" toml:"path"`
	DSN    string `yaml:"dsn" toml:"dsn"`
}

type DashboardConfig struct {
	Enabled               bool     `yaml:"enabled" toml:"enabled"`
	Addr                  string   `yaml:"addr" toml:"addr"`
	PublicURL             string   `yaml:"public_url" toml:"public_url"`
	ClientID              string   `yaml:"client_id" toml:"client_id"`
	ClientSecret          string   `yaml:"client_secret" toml:"client_secret"`
	RedirectURL           string   `yaml:"redirect_url" toml:"redirect_url"`
	CookieSecure          bool     `yaml:"cookie_secure" toml:"cookie_secure"`
	SessionTTLMinutes     int      `yaml:"session_ttl_minutes" toml:"session_ttl_minutes"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds" toml:"request_timeout_seconds"`
	AdminIDs              []string `yaml:"admin_ids" toml:"admin_ids"`
}

type CacheConfig struct {
	ChannelTTLSeconds int `yaml:"channel_ttl_seconds" toml:"channel_ttl_seconds"`
}

type EmbedConfig struct {
	AuditRetention int `yaml:"audit_retention" toml:"audit_retention"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Store: StoreConfig{
			Driver: "bolt",
			Path:   "/data/guildhub.db",
		},
		Dashboard: DashboardConfig{
			Enabled:               true,
			Addr:                  ":8080",
			PublicURL:             "http://localhost:8080",
			SessionTTLMinutes:     60 * 24 * 7,
			RequestTimeoutSeconds: 15,
		},
		Cache:  CacheConfig{ChannelTTLSeconds: 30},
		Embeds: EmbedConfig{AuditRetention: 100},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse %s", path)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func (c Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is required")
	}
	switch c.Store.Driver {
	case "bolt", "sqlite":
		if c.Store.Path == "" {
			return errors.Errorf("store.path is required for the %s driver", c.Store.Driver)
		}
	case "postgres":
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
	case "memory":
	default:
		return errors.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Dashboard.Enabled && (c.Dashboard.ClientID == "" || c.Dashboard.ClientSecret == "") {
		return errors.New("dashboard.client_id and dashboard.client_secret are required when the dashboard is enabled")
	}
	return nil
}

// CallbackURL falls back to the public URL's callback path.
func (d DashboardConfig) CallbackURL() string {
	if d.RedirectURL != "" {
		return d.RedirectURL
	}
	return strings.TrimSuffix(d.PublicURL, "/") + "/auth/callback"
}

func (d DashboardConfig) IsAdmin(userID string) bool {
	for _, id := range d.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Store.Driver = strings.ToLower(envString("STORE_DRIVER", cfg.Store.Driver))
	cfg.Store.Path = envString("STORE_PATH", cfg.Store.Path)
	cfg.Store.DSN = envString("DATABASE_URL", cfg.Store.DSN)
	cfg.Dashboard.Enabled = envBool("DASHBOARD_ENABLED", cfg.Dashboard.Enabled)
	cfg.Dashboard.Addr = envString("DASHBOARD_ADDR", cfg.Dashboard.Addr)
	cfg.Dashboard.PublicURL = envString("DASHBOARD_PUBLIC_URL", cfg.Dashboard.PublicURL)
	cfg.Dashboard.ClientID = envString("DISCORD_CLIENT_ID", cfg.Dashboard.ClientID)
	cfg.Dashboard.ClientSecret = envString("DISCORD_CLIENT_SECRET", cfg.Dashboard.ClientSecret)
	cfg.Dashboard.RedirectURL = envString("DISCORD_REDIRECT_URL", cfg.Dashboard.RedirectURL)
	cfg.Dashboard.CookieSecure = envBool("COOKIE_SECURE", cfg.Dashboard.CookieSecure)
	cfg.Dashboard.SessionTTLMinutes = envInt("SESSION_TTL_MINUTES", cfg.Dashboard.SessionTTLMinutes)
	cfg.Dashboard.RequestTimeoutSeconds = envInt("REQUEST_TIMEOUT_SECONDS", cfg.Dashboard.RequestTimeoutSeconds)
	cfg.Dashboard.AdminIDs = envList("ADMIN_IDS", cfg.Dashboard.AdminIDs)
	cfg.Cache.ChannelTTLSeconds = envInt("CHANNEL_CACHE_TTL_SECONDS", cfg.Cache.ChannelTTLSeconds)
	cfg.Embeds.AuditRetention = envInt("AUDIT_RETENTION", cfg.Embeds.AuditRetention)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(strings.ToLower(level)))
	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
