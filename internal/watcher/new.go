package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
)

// Options tunes the watcher. Zero values get defaults.
type Options struct {
	// MaxConcurrent bounds handler calls in flight. Default 1.
	MaxConcurrent int
	// SettleDelay is how long a file's size must stay unchanged before it
	// is handed over. Default 500ms.
	SettleDelay time.Duration
	// ScanExisting handles recordings already in the inbox at startup.
	ScanExisting bool
}

// New creates a new Watcher instance with concurrency control
func New(inputDir string, handler EventHandler, log logger.Logger, opts Options) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 500 * time.Millisecond
	}

	return &implWatcher{
		inputDir:  inputDir,
		handler:   handler,
		logger:    log,
		watcher:   watcher,
		opts:      opts,
		semaphore: make(chan struct{}, opts.MaxConcurrent),
		inFlight:  make(map[string]bool),
	}, nil
}
