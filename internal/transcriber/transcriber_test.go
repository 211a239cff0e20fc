package transcriber

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/notes-flow/internal/apperr"
	"github.com/nguyentantai21042004/notes-flow/internal/config"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/pkg/executor"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

// fakeExecutor answers by command name and records every call.
type fakeExecutor struct {
	calls   []call
	results map[string]executor.Result
	errs    map[string]error
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (executor.Result, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.results[name], f.errs[name]
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (executor.Result, error) {
	return f.Execute(ctx, name, args...)
}

func testConfig(t *testing.T, command string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Temp = t.TempDir()
	cfg.Transcription.Command = command
	cfg.Transcription.Args = nil
	return cfg
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "transcribe.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "temporary audio was not removed")
}

func TestTranscribeReturnsTrimmedStdout(t *testing.T) {
	script := writeScript(t, `printf '  '; cat "$1"; printf '\n\n'`)
	cfg := testConfig(t, script)

	text, err := New(cfg, executor.New(), logger.NewNop()).Transcribe(context.Background(), []byte("привіт, світ"), "")
	require.NoError(t, err)
	require.Equal(t, "привіт, світ", text)
	requireEmptyDir(t, cfg.Paths.Temp)
}

func TestTranscribeKeepsOutputOfFailedProcess(t *testing.T) {
	script := writeScript(t, "echo 'partial transcript'\necho 'CUDA error' >&2\nexit 1")
	cfg := testConfig(t, script)

	text, err := New(cfg, executor.New(), logger.NewNop()).Transcribe(context.Background(), []byte("audio"), ".wav")
	require.NoError(t, err)
	require.Equal(t, "partial transcript", text)
	requireEmptyDir(t, cfg.Paths.Temp)
}

func TestTranscribeProcessFailureWithoutOutput(t *testing.T) {
	script := writeScript(t, "echo 'faster-whisper not installed' >&2\nexit 1")
	cfg := testConfig(t, script)

	_, err := New(cfg, executor.New(), logger.NewNop()).Transcribe(context.Background(), []byte("audio"), "")
	require.Error(t, err)
	require.True(t, apperr.IsCode(err, apperr.CodeTranscriptionProcess))
	require.Contains(t, err.Error(), "faster-whisper not installed")
	requireEmptyDir(t, cfg.Paths.Temp)
}

func TestTranscribeEmptyOutput(t *testing.T) {
	script := writeScript(t, "printf '   \\n'")
	cfg := testConfig(t, script)

	_, err := New(cfg, executor.New(), logger.NewNop()).Transcribe(context.Background(), []byte("silence"), "")
	require.True(t, apperr.IsCode(err, apperr.CodeTranscriptionEmpty))
	requireEmptyDir(t, cfg.Paths.Temp)
}

func TestTranscribeEmptyAudioSkipsProcess(t *testing.T) {
	fake := &fakeExecutor{}
	cfg := testConfig(t, "whisper")

	_, err := New(cfg, fake, logger.NewNop()).Transcribe(context.Background(), nil, "")
	require.True(t, apperr.IsCode(err, apperr.CodeTranscriptionEmpty))
	require.Empty(t, fake.calls)
}

func TestTranscribeAppendsPathAfterArgs(t *testing.T) {
	fake := &fakeExecutor{results: map[string]executor.Result{"python3": {Stdout: "text"}}}
	cfg := testConfig(t, "python3")
	cfg.Transcription.Args = []string{"transcribe_script.py", "--language", "uk"}

	_, err := New(cfg, fake, logger.NewNop()).Transcribe(context.Background(), []byte("audio"), "mp3")
	require.NoError(t, err)

	require.Len(t, fake.calls, 1)
	args := fake.calls[0].args
	require.Len(t, args, 4)
	require.Equal(t, []string{"transcribe_script.py", "--language", "uk"}, args[:3])
	require.Equal(t, cfg.Paths.Temp, filepath.Dir(args[3]))
	require.True(t, strings.HasSuffix(args[3], ".mp3"))
}

func TestTranscribeNormalizesAudio(t *testing.T) {
	fake := &fakeExecutor{results: map[string]executor.Result{"whisper": {Stdout: "text"}}}
	cfg := testConfig(t, "whisper")
	cfg.Transcription.NormalizeAudio = true

	_, err := New(cfg, fake, logger.NewNop()).Transcribe(context.Background(), []byte("audio"), "")
	require.NoError(t, err)

	require.Len(t, fake.calls, 2)
	require.Equal(t, "ffmpeg", fake.calls[0].name)
	require.Contains(t, fake.calls[0].args, "16000")
	input := fake.calls[1].args[len(fake.calls[1].args)-1]
	require.True(t, strings.HasSuffix(input, "_norm.wav"))
}

func TestTranscribeFallsBackWhenNormalizationFails(t *testing.T) {
	fake := &fakeExecutor{
		results: map[string]executor.Result{"whisper": {Stdout: "text"}},
		errs:    map[string]error{"ffmpeg": errors.New("ffmpeg: not found")},
	}
	cfg := testConfig(t, "whisper")
	cfg.Transcription.NormalizeAudio = true

	text, err := New(cfg, fake, logger.NewNop()).Transcribe(context.Background(), []byte("audio"), "")
	require.NoError(t, err)
	require.Equal(t, "text", text)

	input := fake.calls[1].args[len(fake.calls[1].args)-1]
	require.True(t, strings.HasSuffix(input, ".webm"))
	requireEmptyDir(t, cfg.Paths.Temp)
}
