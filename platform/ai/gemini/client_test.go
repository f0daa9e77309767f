package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"globe_backend/platform/apperr"
	"globe_backend/platform/logger"

	"google.golang.org/genai"
)

type testConfig struct {
	apiKey string
}

func (c testConfig) GetGeminiAPIKey() string         { return c.apiKey }
func (c testConfig) GetGeminiModel() string          { return "gemini-2.5-flash" }
func (c testConfig) GetGeminiTimeout() time.Duration { return time.Second }
func (c testConfig) GetGeminiMaxOutputTokens() int   { return 256 }
func (c testConfig) IsGeminiEnabled() bool           { return c.apiKey != "" }

type fakeModels struct {
	replies   []string
	errs      []error
	calls     int
	lastModel string
	lastCfg   *genai.GenerateContentConfig
	model     *genai.Model
	getErr    error
	pages     []genai.Page[genai.Model]
	listCalls int
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.lastModel = model
	f.lastCfg = cfg
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	text := ""
	if i < len(f.replies) {
		text = f.replies[i]
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}, nil
}

func (f *fakeModels) Get(context.Context, string, *genai.GetModelConfig) (*genai.Model, error) {
	return f.model, f.getErr
}

func (f *fakeModels) List(_ context.Context, cfg *genai.ListModelsConfig) (genai.Page[genai.Model], error) {
	i := f.listCalls
	f.listCalls++
	if i >= len(f.pages) {
		return genai.Page[genai.Model]{}, nil
	}
	return f.pages[i], nil
}

func newTestClient(models modelsAPI) *Client {
	c := newClient(models, testConfig{apiKey: "test-key"}, logger.Discard())
	c.retryBase = time.Millisecond
	return c
}

func TestGenerate_ReturnsTextAndModel(t *testing.T) {
	fake := &fakeModels{replies: []string{"  - Founded as Lutetia.\n"}}
	c := newTestClient(fake)

	res, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "- Founded as Lutetia." {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if res.Model != "gemini-2.5-flash" || fake.lastModel != "gemini-2.5-flash" {
		t.Fatalf("expected configured model, got %q / %q", res.Model, fake.lastModel)
	}
	if fake.lastCfg == nil || fake.lastCfg.MaxOutputTokens != 256 {
		t.Fatalf("expected max output tokens to be forwarded, got %+v", fake.lastCfg)
	}
}

func TestGenerate_RetriesTransientErrors(t *testing.T) {
	fake := &fakeModels{
		errs:    []error{errors.New("503 unavailable"), nil},
		replies: []string{"", "text"},
	}
	c := newTestClient(fake)

	res, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "text" || fake.calls != 2 {
		t.Fatalf("expected success on second attempt, got %q after %d calls", res.Text, fake.calls)
	}
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	boom := errors.New("boom")
	fake := &fakeModels{errs: []error{boom, boom, boom}}
	c := newTestClient(fake)

	_, err := c.Generate(context.Background(), "prompt")
	if apperr.GetCode(err) != apperr.CodeUpstreamUnavailable {
		t.Fatalf("expected UPSTREAM_UNAVAILABLE, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if fake.calls != defaultMaxRetries+1 {
		t.Fatalf("expected %d attempts, got %d", defaultMaxRetries+1, fake.calls)
	}
}

func TestGenerate_PermanentAPIErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"invalid argument", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "bad request"}},
		{"permission denied", genai.APIError{Code: 403, Status: "PERMISSION_DENIED", Message: "key rejected"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeModels{errs: []error{tt.err, tt.err, tt.err}}
			c := newTestClient(fake)

			_, err := c.Generate(context.Background(), "prompt")
			if apperr.GetCode(err) != apperr.CodeUpstreamUnavailable {
				t.Fatalf("expected UPSTREAM_UNAVAILABLE, got %v", err)
			}
			if fake.calls != 1 {
				t.Fatalf("expected a single attempt, got %d", fake.calls)
			}
		})
	}
}

func TestGenerate_RetriesRateLimitAndServerErrors(t *testing.T) {
	fake := &fakeModels{
		errs:    []error{genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, genai.APIError{Code: 503, Status: "UNAVAILABLE"}, nil},
		replies: []string{"", "", "text"},
	}
	c := newTestClient(fake)

	res, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "text" || fake.calls != 3 {
		t.Fatalf("expected success on third attempt, got %q after %d calls", res.Text, fake.calls)
	}
}

func TestGenerate_EmptyReplyIsNoModelAvailable(t *testing.T) {
	c := newTestClient(&fakeModels{replies: []string{"   "}})

	_, err := c.Generate(context.Background(), "the prompt")
	if apperr.GetCode(err) != apperr.CodeNoModelAvailable {
		t.Fatalf("expected NO_MODEL_AVAILABLE, got %v", err)
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	details, ok := appErr.Details.(map[string]string)
	if !ok || details["prompt"] != "the prompt" || details["model"] != "gemini-2.5-flash" {
		t.Fatalf("expected prompt and model in details, got %#v", appErr.Details)
	}
}

func TestDisabledClientReportsMissingCredential(t *testing.T) {
	c, err := New(context.Background(), testConfig{}, logger.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Enabled() {
		t.Fatal("expected client without api key to be disabled")
	}
	if err := c.ValidateModel(context.Background()); err != nil {
		t.Fatalf("expected validation to be skipped, got %v", err)
	}

	_, err = c.Generate(context.Background(), "prompt")
	if apperr.GetCode(err) != apperr.CodeMissingCredential {
		t.Fatalf("expected MISSING_CREDENTIAL from Generate, got %v", err)
	}
	_, err = c.ListModels(context.Background())
	if apperr.GetCode(err) != apperr.CodeMissingCredential {
		t.Fatalf("expected MISSING_CREDENTIAL from ListModels, got %v", err)
	}
}

func TestValidateModel(t *testing.T) {
	ok := newTestClient(&fakeModels{model: &genai.Model{Name: "models/gemini-2.5-flash", SupportedActions: []string{"generateContent"}}})
	if err := ok.ValidateModel(context.Background()); err != nil {
		t.Fatalf("expected valid model, got %v", err)
	}

	missing := newTestClient(&fakeModels{getErr: errors.New("404 not found")})
	if err := missing.ValidateModel(context.Background()); err == nil {
		t.Fatal("expected error for unknown model")
	}

	embedOnly := newTestClient(&fakeModels{model: &genai.Model{SupportedActions: []string{"embedContent"}}})
	if err := embedOnly.ValidateModel(context.Background()); err == nil {
		t.Fatal("expected error for model without generateContent")
	}
}

func TestListModels_FollowsPages(t *testing.T) {
	fake := &fakeModels{pages: []genai.Page[genai.Model]{
		{Items: []*genai.Model{{Name: "models/a", DisplayName: "A"}}, NextPageToken: "next"},
		{Items: []*genai.Model{{Name: "models/b", InputTokenLimit: 1000, OutputTokenLimit: 100}}},
	}}
	c := newTestClient(fake)

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0].Name != "models/a" || models[1].InputTokenLimit != 1000 {
		t.Fatalf("unexpected models %+v", models)
	}
	if fake.listCalls != 2 {
		t.Fatalf("expected 2 list calls, got %d", fake.listCalls)
	}
}
