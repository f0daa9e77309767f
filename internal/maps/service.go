package maps

import (
	"context"
	"unicode/utf8"

	"globe_backend/internal/geo"
	"globe_backend/internal/nominatim"
	"globe_backend/internal/prompt"
	"globe_backend/platform/ai/gemini"
	"globe_backend/platform/logger"
)

// Geocoder resolves coordinates and free text through Nominatim.
type Geocoder interface {
	Reverse(ctx context.Context, at geo.Coordinate) (nominatim.Place, error)
	Search(ctx context.Context, query string) ([]nominatim.Candidate, error)
}

// Narrator generates text for a prompt.
type Narrator interface {
	Generate(ctx context.Context, prompt string) (gemini.Result, error)
	ListModels(ctx context.Context) ([]gemini.ModelInfo, error)
	Model() string
}

// Service composes viewport resolution, geocoding, prompt building and
// generation.
type Service struct {
	geocoder Geocoder
	narrator Narrator
	log      *logger.Logger
}

func NewService(geocoder Geocoder, narrator Narrator, log *logger.Logger) *Service {
	return &Service{geocoder: geocoder, narrator: narrator, log: log}
}

// Search forwards a free-text query to the geocoder.
func (s *Service) Search(ctx context.Context, query string) (SearchResponse, error) {
	results, err := s.geocoder.Search(ctx, query)
	if err != nil {
		return SearchResponse{}, err
	}
	return SearchResponse{Results: results}, nil
}

// Region reverse geocodes the viewport center.
func (s *Service) Region(ctx context.Context, vp geo.Viewport) (RegionResponse, error) {
	lc, err := s.locate(ctx, vp)
	if err != nil {
		return RegionResponse{}, err
	}
	return RegionResponse{Region: lc.DisplayName, LocationContext: lc}, nil
}

// HistoricalPrompt builds the prompt for the viewport without calling the model.
func (s *Service) HistoricalPrompt(ctx context.Context, vp geo.Viewport) (PromptResponse, error) {
	lc, err := s.locate(ctx, vp)
	if err != nil {
		return PromptResponse{}, err
	}
	text := prompt.Build(lc)
	return PromptResponse{
		Prompt:          text,
		LocationContext: lc,
		PromptLength:    utf8.RuneCountInString(text),
	}, nil
}

// Ask builds the prompt for the viewport and asks the model for a narrative.
func (s *Service) Ask(ctx context.Context, vp geo.Viewport) (AskResponse, error) {
	lc, err := s.locate(ctx, vp)
	if err != nil {
		return AskResponse{}, err
	}

	text := prompt.Build(lc)
	result, err := s.narrator.Generate(ctx, text)
	if err != nil {
		return AskResponse{}, err
	}

	s.log.WithContext(ctx).Info("narrative generated",
		"model", result.Model,
		"region", lc.DisplayName,
		"promptLength", utf8.RuneCountInString(text),
	)

	return AskResponse{
		HistoricalInfo:  result.Text,
		LocationContext: lc,
		OriginalPrompt:  text,
		ModelUsed:       result.Model,
	}, nil
}

// ListModels returns the generation models visible to the credential.
func (s *Service) ListModels(ctx context.Context) (ModelsResponse, error) {
	models, err := s.narrator.ListModels(ctx)
	if err != nil {
		return ModelsResponse{}, err
	}
	return ModelsResponse{Models: models, ConfiguredModel: s.narrator.Model()}, nil
}

func (s *Service) locate(ctx context.Context, vp geo.Viewport) (geo.LocationContext, error) {
	res := vp.Resolve()
	place, err := s.geocoder.Reverse(ctx, res.Center)
	if err != nil {
		return geo.LocationContext{}, err
	}

	lc := geo.NewLocationContext(res)
	lc.DisplayName = place.DisplayName
	lc.Locality = place.Address.Locality()
	lc.State = place.Address.StateOrProvince()
	lc.Country = place.Address.Country
	lc.County = place.Address.County
	return lc, nil
}
