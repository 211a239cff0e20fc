package watcher

import "context"

// Watcher monitors the inbox folder for new recordings
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is called once per recording that lands in the inbox
type EventHandler func(ctx context.Context, filePath string) error
