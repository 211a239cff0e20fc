package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
)

// AudioExtensions lists the recording formats picked up from the inbox.
var AudioExtensions = []string{".wav", ".webm", ".mp3", ".m4a", ".ogg", ".flac", ".opus"}

type implWatcher struct {
	inputDir  string
	handler   EventHandler
	logger    logger.Logger
	watcher   *fsnotify.Watcher
	opts      Options
	semaphore chan struct{}
	wg        sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]bool
}

// Start begins monitoring the input directory for new recordings
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.opts.MaxConcurrent, w.inputDir)
	w.logger.Info(ctx, "Supported formats: %s", strings.Join(AudioExtensions, ", "))

	if w.opts.ScanExisting {
		if err := w.scanExisting(ctx); err != nil {
			w.logger.Warn(ctx, "Failed to scan inbox: %v", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isAudioFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-audio file: %s", event.Name)
				continue
			}
			w.logger.Info(ctx, "New recording detected: %s", event.Name)
			w.dispatch(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inputDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !isAudioFile(e.Name()) {
			continue
		}
		path := filepath.Join(w.inputDir, e.Name())
		w.logger.Info(ctx, "Found waiting recording: %s", path)
		w.dispatch(ctx, path)
	}
	return nil
}

// dispatch hands path to the handler in the background. A path already
// being handled is ignored.
func (w *implWatcher) dispatch(ctx context.Context, path string) {
	w.mu.Lock()
	if w.inFlight[path] {
		w.mu.Unlock()
		return
	}
	w.inFlight[path] = true
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.inFlight, path)
			w.mu.Unlock()
		}()

		if err := w.waitSettled(ctx, path); err != nil {
			w.logger.Warn(ctx, "Skipping %s: %v", path, err)
			return
		}

		select {
		case w.semaphore <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-w.semaphore }()

		if err := w.handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
	}()
}

// waitSettled returns once the file size stops changing between polls, so a
// recording still being copied in is not picked up half-written.
func (w *implWatcher) waitSettled(ctx context.Context, path string) error {
	last := int64(-1)
	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == last {
			return nil
		}
		last = info.Size()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.opts.SettleDelay):
		}
	}
}

// isAudioFile checks if the file has a supported recording extension
func isAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range AudioExtensions {
		if ext == format {
			return true
		}
	}
	return false
}
