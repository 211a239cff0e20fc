package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// moveToArchived moves a processed recording out of the inbox. An existing
// file with the same name is never overwritten.
func (p *implProcessor) moveToArchived(ctx context.Context, audioPath string) (string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Archived, 0755); err != nil {
		return "", fmt.Errorf("create archived dir: %w", err)
	}

	filename := filepath.Base(audioPath)
	destPath := filepath.Join(p.cfg.Paths.Archived, filename)
	if _, err := os.Stat(destPath); err == nil {
		ext := filepath.Ext(filename)
		destPath = filepath.Join(p.cfg.Paths.Archived,
			fmt.Sprintf("%s_%s%s", strings.TrimSuffix(filename, ext), time.Now().Format("20060102-150405"), ext))
	}

	p.logger.Info(ctx, "Archiving recording: %s -> %s", audioPath, destPath)
	if err := os.Rename(audioPath, destPath); err != nil {
		return "", fmt.Errorf("move to archived: %w", err)
	}
	return destPath, nil
}

// removeIfExists deletes a leftover file, logs warning if that fails
func (p *implProcessor) removeIfExists(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		p.logger.Warn(ctx, "Failed to remove %s: %v", filePath, err)
	}
}
