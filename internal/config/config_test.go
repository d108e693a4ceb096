package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigWithInfo_MissingFileUsesDefaults(t *testing.T) {
	cfg, info, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfigWithInfo() error = %v", err)
	}
	if info.FileFound {
		t.Fatalf("FileFound = true, want false")
	}
	if cfg.Server.Port != 20261 {
		t.Fatalf("port = %d, want 20261", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || !cfg.Database.AutoMigrate {
		t.Fatalf("database = %+v", cfg.Database)
	}
}

func TestLoadConfigWithInfo_TomlAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 8080

[database]
driver = "postgres"
dsn = "postgres://localhost/assets"

[sync]
schedule = "0 3 * * *"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ASSETREPORT_LOG_LEVEL", "debug")
	t.Setenv("ASSETREPORT_CORS_ALLOWED_ORIGINS", "http://a.example,http://b.example")

	cfg, info, err := LoadConfigWithInfo(path)
	if err != nil {
		t.Fatalf("LoadConfigWithInfo() error = %v", err)
	}
	if !info.FileFound || !info.PortSpecified {
		t.Fatalf("info = %+v", info)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://localhost/assets" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Sync.Schedule != "0 3 * * *" {
		t.Fatalf("schedule = %q", cfg.Sync.Schedule)
	}
	// 未出现在 toml 中的字段保留默认值
	if cfg.Sync.MaxRetries != 3 {
		t.Fatalf("max retries = %d, want 3", cfg.Sync.MaxRetries)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.Log.Level)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.example" {
		t.Fatalf("origins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestEnsureDataDir_FillsSQLiteDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = t.TempDir()

	dir, err := EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("EnsureDataDir() error = %v", err)
	}
	if _, err := os.Stat(UploadDir(dir)); err != nil {
		t.Fatalf("uploads dir missing: %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 1 {
		t.Fatalf("data dir entries = %d, want only uploads/", len(entries))
	}
	if !strings.HasPrefix(cfg.Database.DSN, filepath.Join(dir, "assetreport.db")) {
		t.Fatalf("dsn = %q", cfg.Database.DSN)
	}
}
