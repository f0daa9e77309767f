// Package gemini provides a client for the Gemini generative-language API.
// One configured model serves every request; it is validated once at startup.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"globe_backend/platform/apperr"
	"globe_backend/platform/config"
	"globe_backend/platform/logger"

	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"
	"google.golang.org/genai"
)

const (
	defaultTemperature = 0.7
	defaultMaxRetries  = 2
	listPageSize       = 50
	maxListPages       = 5
)

// modelsAPI is the subset of *genai.Models used by Client.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
	List(ctx context.Context, config *genai.ListModelsConfig) (genai.Page[genai.Model], error)
}

// Result is a generated narrative and the model that produced it.
type Result struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// ModelInfo describes one model available to the configured credential.
type ModelInfo struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"display_name"`
	Description      string   `json:"description"`
	InputTokenLimit  int32    `json:"input_token_limit"`
	OutputTokenLimit int32    `json:"output_token_limit"`
	SupportedActions []string `json:"supported_actions"`
}

// Client generates text with a single configured Gemini model.
type Client struct {
	models          modelsAPI
	model           string
	timeout         time.Duration
	maxOutputTokens int32
	temperature     float32
	maxRetries      uint64
	retryBase       time.Duration
	log             *logger.Logger
}

// New creates a client from cfg. Without an API key the client is returned
// disabled and every call fails with MissingCredential.
func New(ctx context.Context, cfg config.GeminiConfig, log *logger.Logger) (*Client, error) {
	c := newClient(nil, cfg, log)
	if !cfg.IsGeminiEnabled() {
		log.Warn("GEMINI_API_KEY not set; narrative generation is disabled")
		return c, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c.models = gc.Models
	return c, nil
}

func newClient(models modelsAPI, cfg config.GeminiConfig, log *logger.Logger) *Client {
	return &Client{
		models:          models,
		model:           cfg.GetGeminiModel(),
		timeout:         cfg.GetGeminiTimeout(),
		maxOutputTokens: int32(cfg.GetGeminiMaxOutputTokens()),
		temperature:     defaultTemperature,
		maxRetries:      defaultMaxRetries,
		retryBase:       500 * time.Millisecond,
		log:             log,
	}
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool {
	return c.models != nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// ValidateModel checks that the configured model exists for this credential.
// It is a no-op when the client is disabled.
func (c *Client) ValidateModel(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	m, err := c.models.Get(ctx, c.model, nil)
	c.log.UpstreamCall("gemini", "models.get", 0, time.Since(start), 1, err)
	if err != nil {
		return fmt.Errorf("validate gemini model %q: %w", c.model, err)
	}
	if m != nil && len(m.SupportedActions) > 0 && !lo.Contains(m.SupportedActions, "generateContent") {
		return fmt.Errorf("gemini model %q does not support generateContent", c.model)
	}
	return nil
}

// Generate sends prompt to the configured model and returns its text.
func (c *Client) Generate(ctx context.Context, prompt string) (Result, error) {
	if !c.Enabled() {
		return Result{}, missingCredential().WithOp("gemini.Generate")
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}
	temperature := c.temperature
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: c.maxOutputTokens,
	}

	var resp *genai.GenerateContentResponse
	attempt := 0
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		start := time.Now()
		r, err := c.models.GenerateContent(callCtx, c.model, contents, genCfg)
		c.log.UpstreamCall("gemini", "models.generateContent", 0, time.Since(start), attempt, err)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !isTransient(err) {
				return err
			}
			return retry.RetryableError(err)
		}
		resp = r
		return nil
	})
	if err != nil {
		return Result{}, apperr.UpstreamUnavailable("gemini generation failed", err).
			WithOp("gemini.Generate").
			WithDetails(map[string]string{"model": c.model})
	}

	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		details := map[string]string{"model": c.model, "prompt": prompt}
		if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
			details["finish_reason"] = string(resp.Candidates[0].FinishReason)
		}
		return Result{}, apperr.NoModelAvailable(fmt.Sprintf("model %s returned no text", c.model)).
			WithOp("gemini.Generate").
			WithDetails(details)
	}

	return Result{Text: text, Model: c.model}, nil
}

// ListModels returns the models visible to the configured credential.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if !c.Enabled() {
		return nil, missingCredential().WithOp("gemini.ListModels")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := make([]ModelInfo, 0)
	token := ""
	for page := 1; page <= maxListPages; page++ {
		start := time.Now()
		p, err := c.models.List(ctx, &genai.ListModelsConfig{PageSize: listPageSize, PageToken: token})
		c.log.UpstreamCall("gemini", "models.list", 0, time.Since(start), page, err)
		if err != nil {
			return nil, apperr.UpstreamUnavailable("gemini model listing failed", err).WithOp("gemini.ListModels")
		}

		for _, m := range p.Items {
			if m == nil {
				continue
			}
			out = append(out, ModelInfo{
				Name:             m.Name,
				DisplayName:      m.DisplayName,
				Description:      m.Description,
				InputTokenLimit:  m.InputTokenLimit,
				OutputTokenLimit: m.OutputTokenLimit,
				SupportedActions: m.SupportedActions,
			})
		}

		if p.NextPageToken == "" {
			break
		}
		token = p.NextPageToken
	}
	return out, nil
}

// isTransient reports whether err may succeed on retry: rate limiting, server
// errors and anything that is not an API status (transport failures,
// per-attempt timeouts).
func isTransient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return transientStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return transientStatus(apiErrPtr.Code)
	}
	return true
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func missingCredential() *apperr.Error {
	return apperr.MissingCredential("gemini api key is not configured")
}
