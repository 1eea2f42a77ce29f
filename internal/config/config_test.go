package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", `
discord_token: file-token
store:
  driver: sqlite
  path: /tmp/x.db
dashboard:
  client_id: "1"
  client_secret: secret
  admin_ids: ["111"]
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("ADMIN_IDS", "222, 333")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DiscordToken != "env-token" {
		t.Fatalf("expected env override, got %q", cfg.DiscordToken)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "/tmp/x.db" {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if !cfg.Dashboard.IsAdmin("333") || cfg.Dashboard.IsAdmin("111") {
		t.Fatalf("unexpected admin ids: %v", cfg.Dashboard.AdminIDs)
	}
	if cfg.Dashboard.SessionTTLMinutes != DefaultConfig().Dashboard.SessionTTLMinutes {
		t.Fatalf("expected default session ttl to survive")
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
discord_token = "toml-token"
log_level = "debug"

[store]
driver = "memory"

[dashboard]
enabled = false
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DISCORD_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DiscordToken != "toml-token" || cfg.LogLevel != "debug" || cfg.Store.Driver != "memory" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing token error")
	}
	cfg.DiscordToken = "x"
	cfg.Dashboard.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Store.Driver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing dsn error")
	}
	cfg.Store.Driver = "cassandra"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	cfg.Store.Driver = "memory"
	cfg.Dashboard.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected oauth credentials error")
	}
}

func TestCallbackURL(t *testing.T) {
	d := DashboardConfig{PublicURL: "https://dash.example.com/"}
	if got := d.CallbackURL(); got != "https://dash.example.com/auth/callback" {
		t.Fatalf("unexpected callback: %s", got)
	}
	d.RedirectURL = "https://other.example.com/cb"
	if got := d.CallbackURL(); got != "https://other.example.com/cb" {
		t.Fatalf("unexpected callback: %s", got)
	}
}

func TestBuildLogger(t *testing.T) {
	logger, err := BuildLogger("nonsense")
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	if logger.Core().Enabled(-1) {
		t.Fatalf("expected debug to be disabled for unknown level")
	}
}
