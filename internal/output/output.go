// Package output prints user-facing progress and results for the CLI.
package output

import (
	"fmt"
	"io"
	"strings"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Processing(path string) {
	fmt.Fprintf(f.w, "🎙️  Processing %s...\n", path)
}

func (f *Formatter) NotesReady(provider string, tokens int) {
	fmt.Fprintf(f.w, "✅ Notes generated with %s (~%d tokens)\n", provider, tokens)
}

func (f *Formatter) Notes(notes string) {
	fmt.Fprintf(f.w, "\n%s\n", strings.TrimSpace(notes))
}

func (f *Formatter) ActionRequired(msg, hint string) {
	fmt.Fprintf(f.w, "⏸️  %s\n", msg)
	if hint != "" {
		fmt.Fprintf(f.w, "   %s\n", hint)
	}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) ModelListHeader(endpoint string) {
	fmt.Fprintf(f.w, "📦 Models at %s:\n\n", endpoint)
}

func (f *Formatter) ModelListItem(name string, size int64, active bool) {
	marker := ""
	if active {
		marker = " ⭐"
	}
	fmt.Fprintf(f.w, "  %s (%s)%s\n", name, formatSize(size), marker)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func formatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
