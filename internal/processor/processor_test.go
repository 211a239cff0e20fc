package processor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyentantai21042004/notes-flow/internal/apperr"
	"github.com/nguyentantai21042004/notes-flow/internal/config"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/internal/summarizer"
	"github.com/stretchr/testify/require"
)

type stubSummarizer struct {
	results []summarizer.Result
	opts    []summarizer.Options
}

func (s *stubSummarizer) ProcessRecording(ctx context.Context, audio []byte, opts summarizer.Options) summarizer.Result {
	s.opts = append(s.opts, opts)
	res := s.results[0]
	if len(s.results) > 1 {
		s.results = s.results[1:]
	}
	return res
}

func setup(t *testing.T, results ...summarizer.Result) (*config.Config, *stubSummarizer, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Input = filepath.Join(root, "input")
	cfg.Paths.Output = filepath.Join(root, "output")
	cfg.Paths.Archived = filepath.Join(root, "archived")
	cfg.Output.Formats = []string{"md", "json"}

	require.NoError(t, os.MkdirAll(cfg.Paths.Input, 0o755))
	audio := filepath.Join(cfg.Paths.Input, "standup.m4a")
	require.NoError(t, os.WriteFile(audio, []byte("audio"), 0o644))

	return cfg, &stubSummarizer{results: results}, audio
}

func TestProcessWritesOutputsAndArchives(t *testing.T) {
	cfg, sum, audio := setup(t, summarizer.Result{
		Success:       true,
		Transcription: "hello team",
		Notes:         "## Summary\n- hello",
		TokenCount:    2,
	})

	require.NoError(t, New(cfg, sum, logger.NewNop()).Process(context.Background(), audio))

	require.Equal(t, ".m4a", sum.opts[0].AudioFormat)
	require.FileExists(t, filepath.Join(cfg.Paths.Output, "standup.md"))
	require.FileExists(t, filepath.Join(cfg.Paths.Output, "standup.json"))
	require.NoFileExists(t, filepath.Join(cfg.Paths.Output, "standup.docx"))

	transcript, err := os.ReadFile(filepath.Join(cfg.Paths.Output, "standup.transcript.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello team\n", string(transcript))

	require.NoFileExists(t, audio)
	require.FileExists(t, filepath.Join(cfg.Paths.Archived, "standup.m4a"))
}

func TestProcessPausedRunKeepsAudioAndTranscript(t *testing.T) {
	paused := summarizer.Result{
		Transcription:  "a very long meeting",
		TokenCount:     20000,
		RequiresAction: summarizer.ActionConfirmLong,
	}
	done := summarizer.Result{Success: true, Transcription: "a very long meeting", Notes: "notes"}
	cfg, sum, audio := setup(t, paused, done)
	proc := New(cfg, sum, logger.NewNop())

	res, err := proc.ProcessWith(context.Background(), audio, summarizer.Options{})
	require.NoError(t, err)
	require.Equal(t, summarizer.ActionConfirmLong, res.RequiresAction)
	require.FileExists(t, audio)

	pending, err := os.ReadFile(filepath.Join(cfg.Paths.Output, "standup.pending.json"))
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(pending, &saved))
	require.Equal(t, "confirm-long-transcription", saved["requiresAction"])
	require.Equal(t, "", saved["notes"])

	// The follow-up call reuses the saved transcript.
	_, err = proc.ProcessWith(context.Background(), audio, summarizer.Options{AllowLongTranscription: true})
	require.NoError(t, err)
	require.Equal(t, "a very long meeting\n", sum.opts[1].TranscriptionOverride)
	require.True(t, sum.opts[1].AllowLongTranscription)
	require.NoFileExists(t, filepath.Join(cfg.Paths.Output, "standup.pending.json"))
	require.NoFileExists(t, audio)
}

func TestProcessFailureKeepsAudio(t *testing.T) {
	failure := apperr.New(apperr.CodeTranscriptionEmpty, "transcription produced no text")
	cfg, sum, audio := setup(t, summarizer.Result{Error: failure.Error(), Err: failure})

	err := New(cfg, sum, logger.NewNop()).Process(context.Background(), audio)
	require.Error(t, err)
	require.True(t, apperr.IsCode(err, apperr.CodeTranscriptionEmpty))
	require.FileExists(t, audio)
	require.NoFileExists(t, filepath.Join(cfg.Paths.Output, "standup.md"))
}

func TestMoveToArchivedAvoidsOverwrite(t *testing.T) {
	cfg, sum, audio := setup(t, summarizer.Result{})
	require.NoError(t, os.MkdirAll(cfg.Paths.Archived, 0o755))
	existing := filepath.Join(cfg.Paths.Archived, "standup.m4a")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	p := New(cfg, sum, logger.NewNop()).(*implProcessor)
	dest, err := p.moveToArchived(context.Background(), audio)
	require.NoError(t, err)
	require.NotEqual(t, existing, dest)

	old, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, "old", string(old))
}

func TestSemaphore(t *testing.T) {
	s := newSemaphore(1)
	require.True(t, s.tryAcquire())
	require.False(t, s.tryAcquire())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.acquire(ctx), context.Canceled)

	s.release()
	require.NoError(t, s.acquire(context.Background()))
}

func TestProcessOutsideInboxLeavesAudio(t *testing.T) {
	cfg, sum, _ := setup(t, summarizer.Result{Success: true, Transcription: "t", Notes: "n"})
	elsewhere := filepath.Join(t.TempDir(), "call.wav")
	require.NoError(t, os.WriteFile(elsewhere, []byte("audio"), 0o644))

	require.NoError(t, New(cfg, sum, logger.NewNop()).Process(context.Background(), elsewhere))
	require.FileExists(t, elsewhere)
	require.FileExists(t, filepath.Join(cfg.Paths.Output, "call.md"))
}
