package transcriber

import "context"

// Transcriber turns recorded audio into plain text
type Transcriber interface {
	// Transcribe writes audio to a temporary file, runs the speech-to-text
	// command on it and returns the trimmed transcript. ext is a file
	// extension hint such as ".mp3"; empty means ".webm".
	Transcribe(ctx context.Context, audio []byte, ext string) (string, error)
}
