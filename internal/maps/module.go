package maps

import (
	apphttp "globe_backend/internal/http"
	"globe_backend/platform/logger"
	"globe_backend/platform/validator"
)

// Module wires the geocoding and narrative HTTP routes.
type Module struct {
	handler *Handler
}

func NewModule(geocoder Geocoder, narrator Narrator, val *validator.Validator, log *logger.Logger) *Module {
	svc := NewService(geocoder, narrator, log)
	h := NewHandler(svc, val)
	return &Module{handler: h}
}

func (m *Module) Name() string {
	return "maps"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.GET("/search", m.handler.Search)
	ctx.API.GET("/region", m.handler.Region)
	ctx.API.GET("/historical_prompt", m.handler.HistoricalPrompt)
	ctx.API.GET("/ask_gemini", ctx.AskLimiter.RateLimit(), m.handler.Ask)
	ctx.API.GET("/list_models", m.handler.ListModels)
}

var _ apphttp.Module = (*Module)(nil)
