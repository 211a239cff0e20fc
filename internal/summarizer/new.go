package summarizer

import (
	"github.com/nguyentantai21042004/notes-flow/internal/config"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/internal/settings"
	"github.com/nguyentantai21042004/notes-flow/internal/transcriber"
)

type implSummarizer struct {
	cfg         *config.Config
	transcriber transcriber.Transcriber
	providers   Providers
	settings    *settings.Store
	logger      logger.Logger
}

// New creates a Summarizer. Provider settings are read from store once per
// call, so updates between calls take effect on the next run.
func New(cfg *config.Config, tr transcriber.Transcriber, providers Providers, store *settings.Store, log logger.Logger) Summarizer {
	return &implSummarizer{
		cfg:         cfg,
		transcriber: tr,
		providers:   providers,
		settings:    store,
		logger:      log,
	}
}
