package hint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// =============================================================================
// GOOGLE GENAI GENERATOR
// =============================================================================

// DefaultModel is used when GenAIOptions.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// ErrNoAPIKey is returned when a generator is built without credentials.
var ErrNoAPIKey = errors.New("GenAI API key is required")

// GenAIOptions configures a GenAIGenerator.
type GenAIOptions struct {
	APIKey string
	Model  string

	Temperature     float32 // 0 keeps the model default
	MaxOutputTokens int32   // 0 keeps the model default

	// Timeout bounds each request; zero means no timeout.
	Timeout time.Duration

	// BaseURL and HTTPClient override the endpoint, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

// GenAIGenerator generates hints with Google's Gemini API.
type GenAIGenerator struct {
	client  *genai.Client
	model   string
	config  *genai.GenerateContentConfig
	timeout time.Duration
}

// NewGenAIGenerator creates a Gemini-backed generator.
func NewGenAIGenerator(ctx context.Context, opts GenAIOptions) (*GenAIGenerator, error) {
	if opts.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	if opts.HTTPClient != nil {
		cc.HTTPClient = opts.HTTPClient
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	gc := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		gc.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = opts.MaxOutputTokens
	}

	return &GenAIGenerator{
		client:  client,
		model:   model,
		config:  gc,
		timeout: opts.Timeout,
	}, nil
}

// Generate sends prompt to the model and returns the response text.
func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

// Model returns the model identifier requests are sent to.
func (g *GenAIGenerator) Model() string {
	return g.model
}
