package config

import (
	"log/slog"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AZURE_STORAGE_ACCOUNT_NAME", "")
	t.Setenv("BASKET_STORAGE", "")
	t.Setenv("BASKET_LOG_LEVEL", "")
	t.Setenv("BASKET_LOG_CONTAINER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Catalog.ItemsPath != "./data/items.json" || cfg.Recipes != "./data/recipes.json" {
		t.Fatalf("unexpected paths %+v", cfg)
	}
	level, err := cfg.Level()
	if err != nil || level != slog.LevelInfo {
		t.Fatalf("expected info level, got %v %v", level, err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BASKET_STORAGE", BackendSQLite)
	t.Setenv("BASKET_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("BASKET_NAMESPACE", "alice")
	t.Setenv("BASKET_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite || cfg.Storage.SQLitePath != "/tmp/x.db" || cfg.Namespace != "alice" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if level, _ := cfg.Level(); level != slog.LevelDebug {
		t.Fatalf("expected debug, got %v", level)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Catalog:   CatalogConfig{ItemsPath: "items.json"},
		Recipes:   "recipes.json",
		Storage:   StorageConfig{Backend: BackendBlob},
		Namespace: "a/b",
		LogLevel:  "loud",
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"AZURE_STORAGE_ACCOUNT_NAME", "must not contain", "invalid log level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}

	cfg = &Config{
		Catalog:  CatalogConfig{ItemsPath: "items.json"},
		Recipes:  "recipes.json",
		Storage:  StorageConfig{Backend: BackendMemory},
		LogLevel: "warn",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	cfg.LogContainer = "logs"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "BASKET_LOG_CONTAINER") {
		t.Fatalf("expected log container error, got %v", err)
	}
	cfg.Storage.Account, cfg.Storage.AccountKey = "acct", "key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
