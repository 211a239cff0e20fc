package provider

import (
	"context"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/internal/settings"
)

// Registry owns the long-lived adapters and hands out the one a run needs.
type Registry struct {
	ollamaCfg OllamaConfig
	gemini    *Gemini
	logger    logger.Logger

	mu     sync.Mutex
	ollama *Ollama
}

// NewRegistry creates a registry. The local adapter is built on first use.
func NewRegistry(ollamaCfg OllamaConfig, geminiCfg GeminiConfig, log logger.Logger) *Registry {
	return &Registry{
		ollamaCfg: ollamaCfg,
		gemini:    NewGemini(geminiCfg, log),
		logger:    log,
	}
}

// CloudReady reports whether a cloud call could be attempted without asking
// the user for a key.
func (r *Registry) CloudReady(s settings.Settings, credential string) bool {
	return strings.TrimSpace(credential) != "" || s.HasCredential() || r.gemini.HasClient()
}

// Resolve returns the provider for a concrete mode.
func (r *Registry) Resolve(ctx context.Context, mode settings.Mode, s settings.Settings, credential string) (Provider, error) {
	if mode == settings.ModeCloud {
		return r.Cloud(ctx, s, credential)
	}
	return r.Local(ctx, s)
}

// Cloud returns the Gemini adapter with a client ready.
func (r *Registry) Cloud(ctx context.Context, s settings.Settings, credential string) (*Gemini, error) {
	r.gemini.SetModel(s.CloudModel)
	key := credential
	if strings.TrimSpace(key) == "" {
		key = s.Credential
	}
	if err := r.gemini.EnsureClient(ctx, key); err != nil {
		return nil, err
	}
	return r.gemini, nil
}

// Local returns the Ollama adapter pointed at the endpoint and model in s.
func (r *Registry) Local(ctx context.Context, s settings.Settings) (*Ollama, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	url := firstNonEmpty(s.LocalURL, r.ollamaCfg.BaseURL)
	model := firstNonEmpty(s.LocalModel, r.ollamaCfg.Model)

	if r.ollama == nil {
		cfg := r.ollamaCfg
		cfg.BaseURL, cfg.Model = url, model
		o, err := NewOllama(ctx, cfg, r.logger)
		if err != nil {
			return nil, err
		}
		r.ollama = o
		return o, nil
	}

	if strings.TrimRight(url, "/") != r.ollama.Endpoint() || model != r.ollama.Requested() {
		r.logger.Info(ctx, "Reconfiguring local provider: %s (%s)", url, model)
		if err := r.ollama.Reconfigure(ctx, url, model); err != nil {
			return nil, err
		}
	}
	return r.ollama, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
