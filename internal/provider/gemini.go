package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/notes-flow/internal/apperr"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/internal/resilience"
	"google.golang.org/genai"
)

// GeminiConfig holds cloud provider configuration
type GeminiConfig struct {
	Model         string
	FallbackModel string
	APIKey        string
	// BaseURL overrides the API endpoint. Empty means the public endpoint.
	BaseURL  string
	Defaults Options
	Policy   resilience.Policy
}

// Gemini calls the Gemini API. The client is created lazily on first use so
// that a missing key surfaces as a credential error, not a startup failure.
type Gemini struct {
	cfg    GeminiConfig
	policy resilience.Policy
	logger logger.Logger

	mu           sync.Mutex
	client       *genai.Client
	clientKey    string
	model        string
	substitution string
}

// NewGemini creates the cloud adapter. No network call is made.
func NewGemini(cfg GeminiConfig, log logger.Logger) *Gemini {
	if cfg.Policy == nil {
		cfg.Policy = resilience.DefaultPolicy()
	}
	return &Gemini{
		cfg:    cfg,
		policy: cfg.Policy,
		logger: log,
		model:  cfg.Model,
	}
}

// Name returns the provider name
func (g *Gemini) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return "gemini/" + g.model
}

// Substitution reports a switch to the fallback model, if one happened.
func (g *Gemini) Substitution() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.substitution
}

// HasClient reports whether a client has already been created.
func (g *Gemini) HasClient() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.client != nil
}

// SetModel changes the primary model for subsequent calls.
func (g *Gemini) SetModel(model string) {
	if model == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cfg.Model != model {
		g.cfg.Model = model
		g.model = model
		g.substitution = ""
	}
}

// EnsureClient creates the client if needed. A non-empty credential that
// differs from the current key rebuilds the client. With no credential an
// existing client is kept, and the configured key is used only to create the
// first one.
func (g *Gemini) EnsureClient(ctx context.Context, credential string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := strings.TrimSpace(credential)
	if key == "" {
		if g.client != nil {
			return nil
		}
		key = strings.TrimSpace(g.cfg.APIKey)
	}
	if key == "" {
		return apperr.New(apperr.CodeCredentialMissing, "no Gemini API key configured")
	}
	if g.client != nil && g.clientKey == key {
		return nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if g.cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeProviderUnavailable, "create Gemini client")
	}
	g.client = client
	g.clientKey = key
	return nil
}

// Generate sends prompt to the current model under the retry/fallback policy.
func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if err := g.EnsureClient(ctx, ""); err != nil {
		return "", err
	}
	opts = opts.merge(g.cfg.Defaults)

	var text string
	err := g.policy.Run(ctx, classifyGemini, func(ctx context.Context) error {
		var gerr error
		text, gerr = g.generateOnce(ctx, prompt, opts)
		return gerr
	}, g.fallback)
	if err != nil {
		if classifyGemini(err) == resilience.KindUnauthorized {
			return "", apperr.Wrap(err, apperr.CodeCredentialMissing, "Gemini rejected the API key")
		}
		return "", apperr.Wrap(err, apperr.CodeProviderUnavailable, "cloud generation failed")
	}
	return text, nil
}

func (g *Gemini) generateOnce(ctx context.Context, prompt string, opts Options) (string, error) {
	g.mu.Lock()
	client, model := g.client, g.model
	g.mu.Unlock()

	cfg := &genai.GenerateContentConfig{}
	if opts.Temperature != nil {
		cfg.Temperature = ptr(float32(*opts.Temperature))
	}
	if opts.TopP != nil {
		cfg.TopP = ptr(float32(*opts.TopP))
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("empty response from Gemini")
}

// fallback switches to the configured fallback model once.
func (g *Gemini) fallback(ctx context.Context, kind resilience.Kind, cause error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cfg.FallbackModel == "" || g.model == g.cfg.FallbackModel {
		return fmt.Errorf("no fallback model available")
	}
	g.logger.Warn(ctx, "Gemini model %s unavailable (%v), switching to %s", g.model, cause, g.cfg.FallbackModel)
	g.substitution = fmt.Sprintf("cloud model %q unavailable; used %q instead", g.model, g.cfg.FallbackModel)
	g.model = g.cfg.FallbackModel
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
