package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "CACHE_TTL", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Port)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("expected 1h cache ttl, got %v", cfg.CacheTTL)
	}
	if cfg.Addr() != ":8000" {
		t.Errorf("expected :8000, got %s", cfg.Addr())
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"*"}) {
		t.Errorf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("MODEL_PATH", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DB_POOL_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("expected 5m, got %v", cfg.CacheTTL)
	}
	if cfg.ModelPath != "" {
		t.Errorf("expected empty model path to disable persistence, got %q", cfg.ModelPath)
	}
	if cfg.DBPoolSize != 20 {
		t.Errorf("expected fallback pool size 20, got %d", cfg.DBPoolSize)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Errorf("expected %v, got %v", want, cfg.CORSAllowedOrigins)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "70000")
	if _, err := Load(); err == nil {
		t.Error("expected error for out of range port")
	}
}
