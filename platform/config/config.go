// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// NominatimConfig provides settings for the OpenStreetMap Nominatim client.
type NominatimConfig interface {
	GetNominatimBaseURL() string
	GetNominatimUserAgent() string
	GetNominatimAcceptLanguage() string
	GetNominatimTimeout() time.Duration
	GetNominatimSearchLimit() int
	GetNominatimReverseZoom() int
	GetNominatimRateLimit() float64
	GetNominatimMaxRetries() int
}

// GeminiConfig provides settings for the Gemini generation client.
type GeminiConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetGeminiTimeout() time.Duration
	GetGeminiMaxOutputTokens() int
	IsGeminiEnabled() bool
}

// CacheConfig provides settings for the Redis-backed geocode cache.
type CacheConfig interface {
	GetRedisURL() string
	GetGeocodeCacheTTL() time.Duration
	IsCacheEnabled() bool
}

// RateLimitConfig provides inbound rate limits for expensive endpoints.
type RateLimitConfig interface {
	GetAskRatePerMinute() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	NominatimBaseURL        string
	NominatimUserAgent      string
	NominatimAcceptLanguage string
	NominatimTimeout        time.Duration
	NominatimSearchLimit    int
	NominatimReverseZoom    int
	NominatimRateLimit      float64
	NominatimMaxRetries     int
	GeminiAPIKey            string
	GeminiModel             string
	GeminiTimeout           time.Duration
	GeminiMaxOutputTokens   int
	RedisURL                string
	GeocodeCacheTTL         time.Duration
	AskRatePerMinute        int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// NominatimConfig implementation
func (c *Config) GetNominatimBaseURL() string        { return c.NominatimBaseURL }
func (c *Config) GetNominatimUserAgent() string      { return c.NominatimUserAgent }
func (c *Config) GetNominatimAcceptLanguage() string { return c.NominatimAcceptLanguage }
func (c *Config) GetNominatimTimeout() time.Duration { return c.NominatimTimeout }
func (c *Config) GetNominatimSearchLimit() int       { return c.NominatimSearchLimit }
func (c *Config) GetNominatimReverseZoom() int       { return c.NominatimReverseZoom }
func (c *Config) GetNominatimRateLimit() float64     { return c.NominatimRateLimit }
func (c *Config) GetNominatimMaxRetries() int        { return c.NominatimMaxRetries }

// GeminiConfig implementation
func (c *Config) GetGeminiAPIKey() string         { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string          { return c.GeminiModel }
func (c *Config) GetGeminiTimeout() time.Duration { return c.GeminiTimeout }
func (c *Config) GetGeminiMaxOutputTokens() int   { return c.GeminiMaxOutputTokens }
func (c *Config) IsGeminiEnabled() bool           { return c.GeminiAPIKey != "" }

// CacheConfig implementation
func (c *Config) GetRedisURL() string               { return c.RedisURL }
func (c *Config) GetGeocodeCacheTTL() time.Duration { return c.GeocodeCacheTTL }
func (c *Config) IsCacheEnabled() bool              { return c.RedisURL != "" }

// RateLimitConfig implementation
func (c *Config) GetAskRatePerMinute() int { return c.AskRatePerMinute }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	env := &envParser{}
	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8000"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		NominatimBaseURL:        strings.TrimRight(getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"), "/"),
		NominatimUserAgent:      getEnv("NOMINATIM_USER_AGENT", "GlobeBackend/1.0"),
		NominatimAcceptLanguage: getEnv("NOMINATIM_ACCEPT_LANGUAGE", "en"),
		NominatimTimeout:        env.duration("NOMINATIM_TIMEOUT", "10s"),
		NominatimSearchLimit:    env.integer("NOMINATIM_SEARCH_LIMIT", "5"),
		NominatimReverseZoom:    env.integer("NOMINATIM_REVERSE_ZOOM", "10"),
		NominatimRateLimit:      env.float("NOMINATIM_RATE_LIMIT", "1"),
		NominatimMaxRetries:     env.integer("NOMINATIM_MAX_RETRIES", "2"),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		GeminiModel:             getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTimeout:           env.duration("GEMINI_TIMEOUT", "60s"),
		GeminiMaxOutputTokens:   env.integer("GEMINI_MAX_OUTPUT_TOKENS", "512"),
		RedisURL:                getEnv("REDIS_URL", ""),
		GeocodeCacheTTL:         env.duration("GEOCODE_CACHE_TTL", "24h"),
		AskRatePerMinute:        env.integer("ASK_RATE_PER_MINUTE", "10"),
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.NominatimTimeout <= 0 {
		return nil, fmt.Errorf("NOMINATIM_TIMEOUT must be a positive duration")
	}
	if cfg.GeminiTimeout <= 0 {
		return nil, fmt.Errorf("GEMINI_TIMEOUT must be a positive duration")
	}
	if cfg.NominatimRateLimit < 0 {
		return nil, fmt.Errorf("NOMINATIM_RATE_LIMIT must not be negative")
	}
	if cfg.NominatimSearchLimit < 1 || cfg.NominatimSearchLimit > 50 {
		return nil, fmt.Errorf("NOMINATIM_SEARCH_LIMIT must be between 1 and 50")
	}
	if cfg.NominatimUserAgent == "" {
		return nil, fmt.Errorf("NOMINATIM_USER_AGENT is required by the Nominatim usage policy")
	}
	if cfg.GeminiModel == "" {
		return nil, fmt.Errorf("GEMINI_MODEL must not be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// envParser reads typed environment variables, collecting parse failures
// so Load can reject them instead of falling back to zero values.
type envParser struct {
	errs []error
}

func (p *envParser) duration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration: %w", key, err))
	}
	return d
}

func (p *envParser) integer(key, fallback string) int {
	n, err := strconv.Atoi(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer: %w", key, err))
	}
	return n
}

func (p *envParser) float(key, fallback string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(getEnv(key, fallback)), 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number: %w", key, err))
	}
	return f
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
