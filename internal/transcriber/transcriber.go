package transcriber

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/notes-flow/internal/apperr"
)

const defaultExt = ".webm"

// Transcribe runs the configured speech-to-text command on audio.
//
// The command may exit non-zero after printing a usable transcript (CUDA
// teardown errors are common); any non-empty stdout is accepted in that case.
func (t *implTranscriber) Transcribe(ctx context.Context, audio []byte, ext string) (string, error) {
	if len(audio) == 0 {
		return "", apperr.New(apperr.CodeTranscriptionEmpty, "recording contains no audio")
	}

	audioPath, err := t.writeTemp(audio, ext)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeTranscriptionProcess, "stage audio")
	}
	defer t.remove(ctx, audioPath)

	input := audioPath
	if t.cfg.Transcription.NormalizeAudio {
		wavPath, err := t.normalize(ctx, audioPath)
		if err != nil {
			t.logger.Warn(ctx, "Audio normalization failed, using original file: %v", err)
		} else {
			defer t.remove(ctx, wavPath)
			input = wavPath
		}
	}

	if timeout := t.cfg.TranscriptionTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	command := t.cfg.Transcription.Command
	args := append(append([]string{}, t.cfg.Transcription.Args...), input)

	t.logger.Info(ctx, "Transcribing %d bytes with %s", len(audio), command)
	res, runErr := t.executor.Execute(ctx, command, args...)
	text := strings.TrimSpace(res.Stdout)

	switch {
	case runErr != nil && text != "":
		t.logger.Warn(ctx, "Transcription command exited with code %d but produced output, keeping it: %v", res.ExitCode, runErr)
		return text, nil
	case runErr != nil:
		return "", apperr.Wrapf(runErr, apperr.CodeTranscriptionProcess, "transcription command %s failed", command)
	case text == "":
		return "", apperr.New(apperr.CodeTranscriptionEmpty, "transcription produced no text")
	}

	t.logger.Info(ctx, "Transcription completed: %d characters", len(text))
	return text, nil
}

func (t *implTranscriber) writeTemp(audio []byte, ext string) (string, error) {
	if ext == "" {
		ext = defaultExt
	} else if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	if err := os.MkdirAll(t.cfg.Paths.Temp, 0755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	f, err := os.CreateTemp(t.cfg.Paths.Temp, "recording-"+uuid.NewString()+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(audio); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return path, nil
}

func (t *implTranscriber) remove(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		t.logger.Warn(ctx, "Failed to remove temp file %s: %v", path, err)
	}
}
