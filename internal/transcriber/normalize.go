package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// normalize converts the recording to mono PCM WAV at the configured sample
// rate, which is what whisper-family models expect.
func (t *implTranscriber) normalize(ctx context.Context, inputPath string) (string, error) {
	wavPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "_norm.wav"

	// -vn: drop any video stream
	// -ac 1: mono
	// -c:a pcm_s16le: 16-bit PCM
	args := []string{
		"-i", inputPath,
		"-vn",
		"-ar", strconv.Itoa(t.cfg.FFmpeg.SampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		wavPath,
	}

	if _, err := t.executor.Execute(ctx, t.cfg.FFmpeg.BinaryPath, args...); err != nil {
		os.Remove(wavPath)
		return "", fmt.Errorf("ffmpeg normalize audio: %w", err)
	}

	t.logger.Debug(ctx, "Audio normalized: %s", wavPath)
	return wavPath, nil
}
