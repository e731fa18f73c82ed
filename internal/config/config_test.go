package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("APP_TIMEZONE", "")
		t.Setenv("JWT_EXPIRES_IN", "")
		t.Setenv("METRICS_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Location != time.UTC {
			t.Errorf("expected UTC location, got %v", cfg.Location)
		}
		if cfg.JWTExpirationDur != 24*time.Hour {
			t.Errorf("expected 24h expiry, got %v", cfg.JWTExpirationDur)
		}
		if !cfg.MetricsEnabled {
			t.Error("expected metrics to be enabled by default")
		}
	})

	t.Run("timezone", func(t *testing.T) {
		t.Setenv("APP_TIMEZONE", "Asia/Ho_Chi_Minh")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Location.String() != "Asia/Ho_Chi_Minh" {
			t.Errorf("expected Asia/Ho_Chi_Minh, got %s", cfg.Location)
		}
	})

	t.Run("invalid_timezone", func(t *testing.T) {
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for unknown timezone")
		}
	})

	t.Run("invalid_expiry_falls_back", func(t *testing.T) {
		t.Setenv("APP_TIMEZONE", "")
		t.Setenv("JWT_EXPIRES_IN", "soon")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.JWTExpirationDur != 24*time.Hour {
			t.Errorf("expected fallback to 24h, got %v", cfg.JWTExpirationDur)
		}
	})
}

func TestDatabaseURLs(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "worklog", DBSSLMode: "disable"}

	if got, want := cfg.DatabaseDSN(), "host=db port=5432 user=u password=p dbname=worklog sslmode=disable"; got != want {
		t.Errorf("DatabaseDSN() = %q, want %q", got, want)
	}
	if got, want := cfg.DatabaseURL(), "postgres://u:p@db:5432/worklog?sslmode=disable"; got != want {
		t.Errorf("DatabaseURL() = %q, want %q", got, want)
	}
}
