package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LISTEN_ADDR", "DATABASE_DRIVER", "UPLOAD_DRIVER", "IMAGEKIT_TOKEN_TTL", "GIN_MODE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected default listen addr :8080, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != DatabaseDriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.DatabaseDriver)
	}
	if cfg.UploadDriver != UploadDriverLocal {
		t.Fatalf("expected local upload driver, got %q", cfg.UploadDriver)
	}
	if cfg.ImageKitTokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m token ttl, got %s", cfg.ImageKitTokenTTL)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("expected release mode, got %q", cfg.GinMode)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_DRIVER", " Postgres ")
	t.Setenv("UPLOAD_DRIVER", "s3")
	t.Setenv("S3_USE_SSL", "true")

	cfg := Load()
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.ListenAddr)
	}
	if cfg.DatabaseDriver != DatabaseDriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.DatabaseDriver)
	}
	if cfg.UploadDriver != UploadDriverS3 || !cfg.S3UseSSL {
		t.Fatalf("expected s3 uploads over ssl, got %q ssl=%v", cfg.UploadDriver, cfg.S3UseSSL)
	}
}

func TestTokenTTLIsCapped(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{raw: "", want: 30 * time.Minute},
		{raw: "600", want: 10 * time.Minute},
		{raw: "7200", want: time.Hour},
		{raw: "-5", want: 30 * time.Minute},
		{raw: "abc", want: 30 * time.Minute},
	}

	for _, tt := range tests {
		if got := tokenTTL(tt.raw); got != tt.want {
			t.Fatalf("tokenTTL(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
