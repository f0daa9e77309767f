package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/app_db")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetNominatimSearchLimit() != 5 {
		t.Fatalf("expected search limit 5, got %d", cfg.GetNominatimSearchLimit())
	}
	if cfg.GetNominatimTimeout() != 10*time.Second {
		t.Fatalf("expected 10s nominatim timeout, got %s", cfg.GetNominatimTimeout())
	}
	if cfg.IsGeminiEnabled() {
		t.Fatal("gemini must be disabled without an API key")
	}
	if cfg.IsCacheEnabled() {
		t.Fatal("cache must be disabled without REDIS_URL")
	}
	if cfg.GetGeminiModel() != "gemini-2.5-flash" {
		t.Fatalf("unexpected default model %q", cfg.GetGeminiModel())
	}
}

func TestLoad_RejectsWildcardCORSWithCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/app_db")
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected wildcard CORS with credentials to be rejected")
	}
}

func TestLoad_RejectsOutOfRangeSearchLimit(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/app_db")
	t.Setenv("NOMINATIM_SEARCH_LIMIT", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected search limit 0 to be rejected")
	}
}

func TestLoad_RejectsUnparsableNumbers(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"NOMINATIM_RATE_LIMIT", "one per second"},
		{"NOMINATIM_MAX_RETRIES", "two"},
		{"GEOCODE_CACHE_TTL", "1 day"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/app_db")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("expected %s=%q to be rejected", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Fatalf("expected error to name %s, got %v", tt.key, err)
			}
		})
	}
}

func TestLoad_RejectsNegativeRateLimit(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/app_db")
	t.Setenv("NOMINATIM_RATE_LIMIT", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected negative rate limit to be rejected")
	}
}
