package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Rename.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Rename.Workers)
	}
	if cfg.Rename.DedupWindow != 10*time.Second {
		t.Errorf("DedupWindow = %v, want 10s", cfg.Rename.DedupWindow)
	}
	if cfg.Rename.DownloadDir != "downloads" || cfg.Rename.MetadataDir != "Metadata" {
		t.Errorf("dirs = %q, %q", cfg.Rename.DownloadDir, cfg.Rename.MetadataDir)
	}
	if cfg.Rename.ThumbnailSize != 320 {
		t.Errorf("ThumbnailSize = %d, want 320", cfg.Rename.ThumbnailSize)
	}
	if cfg.Preferences.CacheTTL != 5*time.Second {
		t.Errorf("CacheTTL = %v, want 5s", cfg.Preferences.CacheTTL)
	}
	if cfg.Janitor.Schedule != "@every 30m" || cfg.Janitor.MaxAge != 6*time.Hour {
		t.Errorf("janitor = %+v", cfg.Janitor)
	}
	if cfg.Server.Address() != "0.0.0.0:8080" {
		t.Errorf("Address() = %q", cfg.Server.Address())
	}

	// 没有 token 时校验失败
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "bot_token") {
		t.Errorf("Validate() = %v, want bot_token error", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
telegram:
  bot_token: "123456:file-token"
  webhook:
    enabled: true
    url: "https://bot.example.com/hook"
rename:
  workers: 5
  progress_interval: 2s
safety:
  blocked_keywords: ["spoiler"]
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AUTORENAME_RENAME_WORKERS", "8")
	t.Setenv("AUTORENAME_SERVER_PORT", "9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Telegram.BotToken != "123456:file-token" {
		t.Errorf("BotToken = %q", cfg.Telegram.BotToken)
	}
	if cfg.Rename.Workers != 8 {
		t.Errorf("Workers = %d, want env override 8", cfg.Rename.Workers)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Rename.ProgressInterval != 2*time.Second {
		t.Errorf("ProgressInterval = %v", cfg.Rename.ProgressInterval)
	}
	if len(cfg.Safety.BlockedKeywords) != 1 || cfg.Safety.BlockedKeywords[0] != "spoiler" {
		t.Errorf("BlockedKeywords = %v", cfg.Safety.BlockedKeywords)
	}
	if opts := cfg.Log.LoggerOptions(); opts.Level != "debug" || opts.Output != "console" {
		t.Errorf("LoggerOptions() = %+v", opts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Enabled: true},
			Telegram: TelegramConfig{BotToken: "123:abc"},
			Rename:   RenameConfig{Workers: 1, DownloadDir: "downloads", MetadataDir: "Metadata"},
			Storage:  StorageConfig{DatabasePath: "data/bot.db"},
			Janitor:  JanitorConfig{Enabled: true, MaxAge: time.Hour},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"no workers", func(c *Config) { c.Rename.Workers = 0 }, "rename.workers"},
		{"same dirs", func(c *Config) { c.Rename.MetadataDir = "downloads" }, "must differ"},
		{"webhook without url", func(c *Config) { c.Telegram.Webhook.Enabled = true }, "webhook.url"},
		{"webhook without server", func(c *Config) {
			c.Telegram.Webhook = WebhookConfig{Enabled: true, URL: "https://x"}
			c.Server.Enabled = false
		}, "server.enabled"},
		{"bad endpoint", func(c *Config) { c.Telegram.APIEndpoint = "http://localhost:8081" }, "api_endpoint"},
		{"bad file endpoint", func(c *Config) { c.Telegram.FileEndpoint = "http://localhost:8081/file/" }, "file_endpoint"},
		{"file endpoint", func(c *Config) { c.Telegram.FileEndpoint = "http://localhost:8081/file/bot%s/%s" }, ""},
		{"no db", func(c *Config) { c.Storage.DatabasePath = "" }, "database_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want %q", err, tt.want)
			}
		})
	}
}
