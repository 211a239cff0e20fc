package processor

import (
	"github.com/nguyentantai21042004/notes-flow/internal/config"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/internal/summarizer"
)

type implProcessor struct {
	cfg        *config.Config
	summarizer summarizer.Summarizer
	logger     logger.Logger
	sem        *semaphore
}

// New creates a new Processor instance. Only one recording is processed at a
// time; further calls wait for the running one to finish.
func New(cfg *config.Config, sum summarizer.Summarizer, log logger.Logger) Processor {
	return &implProcessor{
		cfg:        cfg,
		summarizer: sum,
		logger:     log,
		sem:        newSemaphore(1),
	}
}
