package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/notes-flow/internal/apperr"
	"github.com/nguyentantai21042004/notes-flow/internal/chunker"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/internal/provider"
	"github.com/nguyentantai21042004/notes-flow/internal/settings"
	"github.com/nguyentantai21042004/notes-flow/internal/tokens"
)

// State is a step of one pipeline run.
type State string

const (
	StateAwaitingTranscript   State = "awaiting-transcript"
	StateThresholdCheck       State = "threshold-check"
	StateAwaitingConfirmation State = "awaiting-confirmation"
	StateAwaitingCredential   State = "awaiting-credential"
	StateProcessing           State = "processing"
	StateDone                 State = "done"
	StateFailed               State = "failed"
)

const fallbackNotesTemplate = `## Notes unavailable

Automatic summarization failed for every part of this recording, so no notes could be generated. The full transcript is included below.

## Transcript

%s
`

// ProcessRecording drives one recording through transcription, the
// confirmation and credential gates, and summarization.
func (s *implSummarizer) ProcessRecording(ctx context.Context, audio []byte, opts Options) Result {
	ctx = logger.WithRunID(ctx, uuid.NewString())
	snap := s.settings.Snapshot()

	s.enter(ctx, StateAwaitingTranscript)
	transcript, err := s.obtainTranscript(ctx, audio, opts)
	if err != nil {
		return s.fail(ctx, err)
	}

	s.enter(ctx, StateThresholdCheck)
	count := tokens.Estimate(transcript)
	threshold := s.cfg.Pipeline.TokenThreshold
	allowLong := opts.AllowLongTranscription || s.cfg.Pipeline.AutoConfirmLong
	s.logger.Info(ctx, "Transcript has ~%d tokens (threshold %d)", count, threshold)

	if tokens.Exceeds(count, threshold) && !allowLong {
		s.enter(ctx, StateAwaitingConfirmation)
		return pause(transcript, count, ActionConfirmLong,
			apperr.Newf(apperr.CodeConfirmationRequired, "transcript has ~%d tokens, above the %d-token threshold", count, threshold))
	}

	mode := settings.ResolveMode(opts.Mode, snap, opts.Credential)
	s.logger.Info(ctx, "Resolved mode: %s", mode)
	if mode == settings.ModeCloud && !s.providers.CloudReady(snap, opts.Credential) {
		s.enter(ctx, StateAwaitingCredential)
		return pause(transcript, count, ActionProvideGeminiKey,
			apperr.New(apperr.CodeCredentialMissing, "cloud mode needs a Gemini API key"))
	}

	s.enter(ctx, StateProcessing)
	p, err := s.providers.Resolve(ctx, mode, snap, opts.Credential)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeCredentialMissing) {
			s.enter(ctx, StateAwaitingCredential)
			return pause(transcript, count, ActionProvideGeminiKey, err)
		}
		return s.fail(ctx, err)
	}

	res := Result{
		Transcription: transcript,
		TokenCount:    count,
		Mode:          mode,
		Provider:      p.Name(),
	}

	chunks := []string{transcript}
	if !s.singlePass(mode, count) {
		chunks = chunker.Split(transcript, s.cfg.Chunking.MaxChars, s.cfg.Chunking.TargetChars)
	}

	if len(chunks) <= 1 {
		err = s.summarizeShort(ctx, p, transcript, &res)
	} else {
		err = s.summarizeLong(ctx, p, transcript, chunks, &res)
	}
	if err != nil {
		if apperr.IsCode(err, apperr.CodeCredentialMissing) {
			s.enter(ctx, StateAwaitingCredential)
			return pause(transcript, count, ActionProvideGeminiKey, err)
		}
		return s.fail(ctx, err)
	}

	if sub, ok := p.(provider.Substituter); ok && sub.Substitution() != "" {
		res.Warnings = append(res.Warnings, sub.Substitution())
	}

	res.Success = true
	s.enter(ctx, StateDone)
	return res
}

func (s *implSummarizer) obtainTranscript(ctx context.Context, audio []byte, opts Options) (string, error) {
	if override := strings.TrimSpace(opts.TranscriptionOverride); override != "" {
		s.logger.Info(ctx, "Using supplied transcript (%d characters)", utf8.RuneCountInString(override))
		return override, nil
	}

	text, err := s.transcriber.Transcribe(ctx, audio, opts.AudioFormat)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.New(apperr.CodeTranscriptionEmpty, "transcription produced no text")
	}
	return text, nil
}

// singlePass reports whether the transcript goes to the model in one prompt
// without chunking.
func (s *implSummarizer) singlePass(mode settings.Mode, count int) bool {
	if !tokens.Exceeds(count, s.cfg.Pipeline.TokenThreshold) {
		return true
	}
	if mode == settings.ModeCloud {
		return s.cfg.Gemini.SinglePass != nil && *s.cfg.Gemini.SinglePass
	}
	return s.cfg.Ollama.SinglePass
}

func (s *implSummarizer) summarizeShort(ctx context.Context, p provider.Provider, transcript string, res *Result) error {
	s.logger.Info(ctx, "Single-pass summary with %s", p.Name())
	notes, err := p.Generate(ctx, s.singlePassPrompt(transcript), synthesisOptions)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return apperr.Newf(apperr.CodeProviderUnavailable, "%s returned empty notes", p.Name())
	}
	res.Notes = notes
	res.Chunks = 1
	return nil
}

func (s *implSummarizer) summarizeLong(ctx context.Context, p provider.Provider, transcript string, chunks []string, res *Result) error {
	s.logger.Info(ctx, "Chunked summary with %s: %d chunks", p.Name(), len(chunks))
	res.Chunks = len(chunks)

	folded, err := s.foldChunks(ctx, chunks, s.chunkStepFor(p))
	res.FailedChunks = folded.failed
	if err != nil {
		return err
	}

	if len(folded.blocks) == 0 {
		allErr := apperr.Newf(apperr.CodeAllChunksFailed, "all %d chunks failed; notes contain the raw transcript", len(chunks))
		s.logger.Error(ctx, "%v", allErr)
		res.Notes = fmt.Sprintf(fallbackNotesTemplate, transcript)
		res.Error = allErr.Error()
		res.Err = allErr
		return nil
	}

	s.logger.Info(ctx, "Synthesizing notes from %d of %d chunks", len(folded.blocks), len(chunks))
	notes, err := p.Generate(ctx, s.synthesisPrompt(folded.blocks), synthesisOptions)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return apperr.Newf(apperr.CodeProviderUnavailable, "%s returned empty notes", p.Name())
	}
	res.Notes = notes
	return nil
}

func (s *implSummarizer) enter(ctx context.Context, state State) {
	s.logger.Debug(ctx, "State: %s", state)
}

func (s *implSummarizer) fail(ctx context.Context, err error) Result {
	s.enter(ctx, StateFailed)
	s.logger.Error(ctx, "Pipeline failed: %v", err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("processing stopped: %w", err)
	}
	return Result{Error: err.Error(), Err: err}
}

// pause builds a requires-action result. The transcript is kept so the
// caller can resubmit it as TranscriptionOverride; Error stays empty since
// nothing failed.
func pause(transcript string, count int, action Action, cause error) Result {
	return Result{
		Transcription:  transcript,
		TokenCount:     count,
		RequiresAction: action,
		Err:            cause,
	}
}
