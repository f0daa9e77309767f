package maps

import (
	"globe_backend/internal/geo"
	"globe_backend/platform/apperr"
	"globe_backend/platform/httpkit"
	"globe_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler exposes the geocoding and narrative endpoints.
type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Search handles GET /api/search?q=...
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, apperr.MissingParameter("missing search query parameter 'q'"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.MissingParameter("missing search query parameter 'q'"))
		return
	}

	result, err := h.svc.Search(c.Request.Context(), req.Query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Region handles GET /api/region with a point or four viewport corners.
func (h *Handler) Region(c *gin.Context) {
	vp, err := geo.ParseViewport(c.Request.URL.Query())
	if httpkit.HandleError(c, err) {
		return
	}

	result, err := h.svc.Region(c.Request.Context(), vp)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// HistoricalPrompt handles GET /api/historical_prompt.
func (h *Handler) HistoricalPrompt(c *gin.Context) {
	vp, err := geo.ParseViewport(c.Request.URL.Query())
	if httpkit.HandleError(c, err) {
		return
	}

	result, err := h.svc.HistoricalPrompt(c.Request.Context(), vp)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Ask handles GET /api/ask_gemini.
func (h *Handler) Ask(c *gin.Context) {
	vp, err := geo.ParseViewport(c.Request.URL.Query())
	if httpkit.HandleError(c, err) {
		return
	}

	result, err := h.svc.Ask(c.Request.Context(), vp)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListModels handles GET /api/list_models.
func (h *Handler) ListModels(c *gin.Context) {
	result, err := h.svc.ListModels(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
