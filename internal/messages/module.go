// Package messages provides the message CRUD bounded context module.
package messages

import (
	apphttp "globe_backend/internal/http"
	"globe_backend/internal/messages/handler"
	"globe_backend/internal/messages/repository"
	"globe_backend/internal/messages/service"
	"globe_backend/platform/logger"
	"globe_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the messages bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the messages module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "messages"
}

// RegisterRoutes mounts message routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.API.Group("/messages")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.GET("/:id", m.handler.GetByID)
	group.PUT("/:id", m.handler.Update)
	group.PATCH("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
