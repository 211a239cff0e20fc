package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/notes-flow/internal/apperr"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/internal/resilience"
)

// OllamaConfig holds local provider configuration
type OllamaConfig struct {
	BaseURL  string
	Model    string
	Timeout  time.Duration
	Defaults Options
	Policy   resilience.Policy
}

// Ollama talks to a local Ollama server.
type Ollama struct {
	httpClient *http.Client
	policy     resilience.Policy
	defaults   Options
	logger     logger.Logger

	mu           sync.RWMutex
	baseURL      string
	requested    string
	model        string
	substitution string
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// ModelInfo is one entry of /api/tags
type ModelInfo struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
}

type listModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// NewOllama creates the local adapter and discovers installed models. A
// configured model that is not installed is replaced by the first one found.
func NewOllama(ctx context.Context, cfg OllamaConfig, log logger.Logger) (*Ollama, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if cfg.Policy == nil {
		cfg.Policy = resilience.DefaultPolicy()
	}

	o := &Ollama{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		policy:     cfg.Policy,
		defaults:   cfg.Defaults,
		logger:     log,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		requested:  cfg.Model,
	}

	if err := o.discover(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// Name returns the provider name
func (o *Ollama) Name() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return "ollama/" + o.model
}

// Model returns the model generation currently uses
func (o *Ollama) Model() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.model
}

// Endpoint returns the base URL in use
func (o *Ollama) Endpoint() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.baseURL
}

// Requested returns the model name asked for in configuration
func (o *Ollama) Requested() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.requested
}

// Substitution describes a model swap made during discovery, if any.
func (o *Ollama) Substitution() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.substitution
}

// Reconfigure points the adapter at another endpoint and/or model. On
// failure the previous endpoint and model stay in effect.
func (o *Ollama) Reconfigure(ctx context.Context, baseURL, model string) error {
	o.mu.Lock()
	prevURL, prevRequested, prevModel, prevSub := o.baseURL, o.requested, o.model, o.substitution
	if baseURL != "" {
		o.baseURL = strings.TrimRight(baseURL, "/")
	}
	if model != "" {
		o.requested = model
	}
	o.mu.Unlock()

	if err := o.discover(ctx); err != nil {
		o.mu.Lock()
		o.baseURL, o.requested, o.model, o.substitution = prevURL, prevRequested, prevModel, prevSub
		o.mu.Unlock()
		return err
	}
	return nil
}

// ListModels lists installed models
func (o *Ollama) ListModels(ctx context.Context) ([]ModelInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, o.Endpoint()+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &statusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}
	return result.Models, nil
}

// Generate runs a non-streaming completion under the retry/fallback policy.
func (o *Ollama) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	opts = opts.merge(o.defaults)

	var text string
	err := o.policy.Run(ctx, classifyHTTP, func(ctx context.Context) error {
		var gerr error
		text, gerr = o.generateOnce(ctx, prompt, opts)
		return gerr
	}, o.fallback)
	if err != nil {
		return "", apperr.Wrapf(err, apperr.CodeProviderUnavailable, "local generation with %s failed", o.Model())
	}
	return text, nil
}

func (o *Ollama) generateOnce(ctx context.Context, prompt string, opts Options) (string, error) {
	o.mu.RLock()
	baseURL, model := o.baseURL, o.model
	o.mu.RUnlock()

	req := generateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: ollamaOptions(opts),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", &statusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(result.Response) == "" {
		return "", fmt.Errorf("empty response from %s", model)
	}
	return result.Response, nil
}

// fallback re-runs discovery when the server reports the model missing.
func (o *Ollama) fallback(ctx context.Context, kind resilience.Kind, cause error) error {
	o.logger.Warn(ctx, "Local model %s unavailable (%v), rediscovering models", o.Model(), cause)
	o.mu.Lock()
	// The current model is the one that just failed; do not pick it again.
	failed := o.model
	o.mu.Unlock()
	return o.discoverExcluding(ctx, failed)
}

func (o *Ollama) discover(ctx context.Context) error {
	return o.discoverExcluding(ctx, "")
}

func (o *Ollama) discoverExcluding(ctx context.Context, exclude string) error {
	models, err := o.ListModels(ctx)
	if err != nil {
		return apperr.Wrapf(err, apperr.CodeProviderUnavailable, "local model server unreachable at %s", o.Endpoint())
	}

	var names []string
	for _, m := range models {
		if m.Name != "" && m.Name != exclude {
			names = append(names, m.Name)
		}
	}
	if len(names) == 0 {
		return apperr.Newf(apperr.CodeProviderUnavailable, "no local models installed at %s", o.Endpoint())
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if match := matchModel(names, o.requested); match != "" {
		o.model = match
		o.substitution = ""
		return nil
	}

	o.model = names[0]
	o.substitution = fmt.Sprintf("local model %q is not installed; used %q instead", o.requested, o.model)
	o.logger.Warn(ctx, "Configured model %s not found, falling back to %s", o.requested, o.model)
	return nil
}

// matchModel finds want among names, treating "name" and "name:latest" as equal.
func matchModel(names []string, want string) string {
	if want == "" {
		return ""
	}
	for _, n := range names {
		if n == want || n == want+":latest" || strings.TrimSuffix(n, ":latest") == want {
			return n
		}
	}
	return ""
}

func ollamaOptions(opts Options) map[string]interface{} {
	m := map[string]interface{}{}
	if opts.Temperature != nil {
		m["temperature"] = *opts.Temperature
	}
	if opts.TopP != nil {
		m["top_p"] = *opts.TopP
	}
	if opts.ContextWindow > 0 {
		m["num_ctx"] = opts.ContextWindow
	}
	if opts.Threads > 0 {
		m["num_thread"] = opts.Threads
	}
	return m
}
