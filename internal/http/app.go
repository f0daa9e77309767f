// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"globe_backend/platform/config"
	"globe_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.RateLimitConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Name() string
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and rate limit settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health lists the dependencies probed by /api/ready (database, cache).
	Health []HealthChecker
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
