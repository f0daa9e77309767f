package maps

import (
	"globe_backend/internal/geo"
	"globe_backend/internal/nominatim"
	"globe_backend/platform/ai/gemini"
)

// SearchRequest represents the forward geocoding query parameters.
type SearchRequest struct {
	Query string `form:"q" json:"q" validate:"required,notblank"`
}

// SearchResponse lists forward geocoding candidates.
type SearchResponse struct {
	Results []nominatim.Candidate `json:"results"`
}

// RegionResponse describes the region at the center of a viewport.
type RegionResponse struct {
	Region          string              `json:"region"`
	LocationContext geo.LocationContext `json:"location_context"`
}

// PromptResponse is the generated prompt without calling the model.
type PromptResponse struct {
	Prompt          string              `json:"prompt"`
	LocationContext geo.LocationContext `json:"location_context"`
	PromptLength    int                 `json:"prompt_length"`
}

// AskResponse is the model's narrative for a viewport.
type AskResponse struct {
	HistoricalInfo  string              `json:"historical_info"`
	LocationContext geo.LocationContext `json:"location_context"`
	OriginalPrompt  string              `json:"original_prompt"`
	ModelUsed       string              `json:"model_used"`
}

// ModelsResponse is the diagnostic model listing.
type ModelsResponse struct {
	Models          []gemini.ModelInfo `json:"models"`
	ConfiguredModel string             `json:"configured_model"`
}
