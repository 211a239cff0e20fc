// Package export writes pipeline results to disk as markdown, docx and json.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Markdown renders notes under a title and timestamp line.
func Markdown(title, notes string, at time.Time) string {
	return fmt.Sprintf("# %s\n\n_%s_\n\n%s\n",
		title,
		at.Format("2006-01-02 15:04"),
		strings.TrimSpace(notes),
	)
}

// WriteMarkdown writes notes to path as a markdown document.
func WriteMarkdown(path, title, notes string, at time.Time) error {
	return writeFile(path, []byte(Markdown(title, notes, at)))
}

// WriteText writes s verbatim with a trailing newline.
func WriteText(path, s string) error {
	return writeFile(path, []byte(strings.TrimRight(s, "\n")+"\n"))
}

// WriteJSON writes v as indented json.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
