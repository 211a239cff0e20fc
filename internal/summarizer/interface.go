package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/notes-flow/internal/provider"
	"github.com/nguyentantai21042004/notes-flow/internal/settings"
)

// Summarizer turns a recording into structured meeting notes.
type Summarizer interface {
	// ProcessRecording never returns an error: every outcome, including
	// gates that need the caller to act, is described by the Result.
	ProcessRecording(ctx context.Context, audio []byte, opts Options) Result
}

// Providers resolves the backend for a run.
type Providers interface {
	CloudReady(s settings.Settings, credential string) bool
	Resolve(ctx context.Context, mode settings.Mode, s settings.Settings, credential string) (provider.Provider, error)
}

// Action is a user-actionable pause returned instead of notes.
type Action string

const (
	ActionConfirmLong      Action = "confirm-long-transcription"
	ActionProvideGeminiKey Action = "provide-gemini-api-key"
)

// Options are the per-call inputs of ProcessRecording.
type Options struct {
	Mode                   settings.Mode
	AllowLongTranscription bool
	Credential             string
	// TranscriptionOverride skips transcription when non-blank, so a caller
	// can re-submit after a confirmation or credential gate.
	TranscriptionOverride string
	// AudioFormat is an extension hint for the temp file, e.g. ".mp3".
	AudioFormat string
}

// Result is the outcome of one pipeline invocation.
type Result struct {
	Success        bool          `json:"success"`
	Transcription  string        `json:"transcription"`
	Notes          string        `json:"notes"`
	TokenCount     int           `json:"tokenCount,omitempty"`
	RequiresAction Action        `json:"requiresAction,omitempty"`
	Error          string        `json:"error,omitempty"`
	Warnings       []string      `json:"warnings,omitempty"`
	Mode           settings.Mode `json:"mode,omitempty"`
	Provider       string        `json:"provider,omitempty"`
	Chunks         int           `json:"chunks,omitempty"`
	FailedChunks   []int         `json:"failedChunks,omitempty"`

	// Err keeps the typed error behind Error for callers that branch on codes.
	Err error `json:"-"`
}
