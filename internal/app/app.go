// Package app wires the pipeline components from configuration.
package app

import (
	"github.com/nguyentantai21042004/notes-flow/internal/apperr"
	"github.com/nguyentantai21042004/notes-flow/internal/config"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/internal/processor"
	"github.com/nguyentantai21042004/notes-flow/internal/provider"
	"github.com/nguyentantai21042004/notes-flow/internal/resilience"
	"github.com/nguyentantai21042004/notes-flow/internal/settings"
	"github.com/nguyentantai21042004/notes-flow/internal/summarizer"
	"github.com/nguyentantai21042004/notes-flow/internal/transcriber"
	"github.com/nguyentantai21042004/notes-flow/pkg/executor"
)

type App struct {
	Config     *config.Config
	Logger     logger.Logger
	Settings   *settings.Store
	Providers  *provider.Registry
	Summarizer summarizer.Summarizer
	Processor  processor.Processor
}

// New builds every component. Nothing here touches the network.
func New(cfg *config.Config, log logger.Logger) (*App, error) {
	initial := settings.FromConfig(cfg)
	if err := initial.Validate(); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeConfigInvalid, "provider settings")
	}
	store := settings.NewStore(initial)

	policy := resilience.DefaultPolicy()
	registry := provider.NewRegistry(
		provider.OllamaConfig{
			BaseURL: cfg.Ollama.URL,
			Model:   cfg.Ollama.Model,
			Timeout: cfg.OllamaTimeout(),
			Defaults: provider.Options{
				Temperature:   provider.Float(cfg.Ollama.Temperature),
				TopP:          provider.Float(cfg.Ollama.TopP),
				ContextWindow: cfg.Ollama.ContextWindow,
				Threads:       cfg.Ollama.Threads,
			},
			Policy: policy,
		},
		provider.GeminiConfig{
			Model:         cfg.Gemini.Model,
			FallbackModel: cfg.Gemini.FallbackModel,
			APIKey:        cfg.Gemini.APIKey,
			Defaults: provider.Options{
				Temperature: provider.Float(cfg.Gemini.Temperature),
				TopP:        provider.Float(cfg.Gemini.TopP),
			},
			Policy: policy,
		},
		log,
	)

	tr := transcriber.New(cfg, executor.New(), log)
	sum := summarizer.New(cfg, tr, registry, store, log)

	return &App{
		Config:     cfg,
		Logger:     log,
		Settings:   store,
		Providers:  registry,
		Summarizer: sum,
		Processor:  processor.New(cfg, sum, log),
	}, nil
}
