package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	at := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	got := Markdown("standup", "\n## Summary\n- shipped\n\n", at)
	require.Equal(t, "# standup\n\n_2026-03-04 09:30_\n\n## Summary\n- shipped\n", got)
}

func TestWriteMarkdownCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "standup.md")
	require.NoError(t, WriteMarkdown(path, "standup", "notes", time.Now()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "# standup\n"))
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	in := map[string]any{"success": true, "notes": "x"}
	require.NoError(t, WriteJSON(path, in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, true, out["success"])
}

func TestWriteDocx(t *testing.T) {
	dir := t.TempDir()
	notes := "## Summary\nWe met.\n\n## Key points\n- **Budget** approved\n1. Ship on Friday\n---\n"

	path := filepath.Join(dir, "notes.docx")
	require.NoError(t, WriteDocx(path, "standup", notes))
	requireZip(t, path)

	path = filepath.Join(dir, "transcript.docx")
	require.NoError(t, WriteTranscriptDocx(path, "standup transcript", strings.Repeat("We talked about the budget. ", 100)))
	requireZip(t, path)
}

func requireZip(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, len(data) > 4 && string(data[:2]) == "PK", "%s is not a docx archive", path)
}

func TestCleanMarkdownInline(t *testing.T) {
	require.Equal(t, "bold and code", cleanMarkdownInline("**bold** and `code`"))
}
