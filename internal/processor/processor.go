package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/notes-flow/internal/export"
	"github.com/nguyentantai21042004/notes-flow/internal/summarizer"
)

const (
	transcriptSuffix = ".transcript.txt"
	pendingSuffix    = ".pending.json"
)

// Process runs one recording with default options
func (p *implProcessor) Process(ctx context.Context, audioPath string) error {
	_, err := p.ProcessWith(ctx, audioPath, summarizer.Options{})
	return err
}

// ProcessWith orchestrates a recording from inbox to output folder
func (p *implProcessor) ProcessWith(ctx context.Context, audioPath string, opts summarizer.Options) (summarizer.Result, error) {
	if !p.sem.tryAcquire() {
		p.logger.Info(ctx, "Another recording is in progress, waiting: %s", audioPath)
		if err := p.sem.acquire(ctx); err != nil {
			return summarizer.Result{}, err
		}
	}
	defer p.sem.release()

	startTime := time.Now()
	name := baseName(audioPath)
	transcriptPath := filepath.Join(p.cfg.Paths.Output, name+transcriptSuffix)
	pendingPath := filepath.Join(p.cfg.Paths.Output, name+pendingSuffix)

	p.logger.Info(ctx, "Starting recording: %s", audioPath)

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return summarizer.Result{}, fmt.Errorf("read recording: %w", err)
	}

	// A transcript saved by an earlier paused run is reused instead of
	// transcribing again.
	if opts.TranscriptionOverride == "" {
		if _, statErr := os.Stat(pendingPath); statErr == nil {
			if saved, readErr := os.ReadFile(transcriptPath); readErr == nil {
				p.logger.Info(ctx, "Reusing saved transcript: %s", transcriptPath)
				opts.TranscriptionOverride = string(saved)
			}
		}
	}
	if opts.AudioFormat == "" {
		opts.AudioFormat = filepath.Ext(audioPath)
	}

	res := p.summarizer.ProcessRecording(ctx, audio, opts)

	switch {
	case res.RequiresAction != "":
		p.logger.Warn(ctx, "Recording %s needs action: %s", name, res.RequiresAction)
		if err := export.WriteText(transcriptPath, res.Transcription); err != nil {
			return res, err
		}
		if err := export.WriteJSON(pendingPath, res); err != nil {
			return res, err
		}
		return res, nil

	case !res.Success:
		if res.Err != nil {
			return res, fmt.Errorf("process %s: %w", name, res.Err)
		}
		return res, fmt.Errorf("process %s: %s", name, res.Error)
	}

	if err := p.writeOutputs(ctx, name, res); err != nil {
		return res, err
	}
	p.removeIfExists(ctx, pendingPath)

	for _, w := range res.Warnings {
		p.logger.Warn(ctx, "%s", w)
	}
	if res.Error != "" {
		p.logger.Warn(ctx, "Notes for %s are degraded: %s", name, res.Error)
	}

	if p.inInbox(audioPath) {
		if _, err := p.moveToArchived(ctx, audioPath); err != nil {
			p.logger.Warn(ctx, "Failed to move original to archived folder: %v", err)
		}
	}

	p.logger.Info(ctx, "Recording %s done in %s (%d tokens, %s)", name, time.Since(startTime).Round(time.Millisecond), res.TokenCount, res.Provider)
	return res, nil
}

func (p *implProcessor) writeOutputs(ctx context.Context, name string, res summarizer.Result) error {
	out := p.cfg.Paths.Output
	var errs []error

	if err := export.WriteText(filepath.Join(out, name+transcriptSuffix), res.Transcription); err != nil {
		errs = append(errs, err)
	}

	for _, format := range p.cfg.Output.Formats {
		var err error
		switch strings.ToLower(format) {
		case "md":
			err = export.WriteMarkdown(filepath.Join(out, name+".md"), name, res.Notes, time.Now())
		case "docx":
			err = export.WriteDocx(filepath.Join(out, name+".docx"), name, res.Notes)
			if err == nil {
				err = export.WriteTranscriptDocx(filepath.Join(out, name+"_transcript.docx"), name, res.Transcription)
			}
		case "json":
			err = export.WriteJSON(filepath.Join(out, name+".json"), res)
		}
		if err != nil {
			p.logger.Error(ctx, "Failed to write %s output: %v", format, err)
			errs = append(errs, err)
		} else {
			p.logger.Debug(ctx, "Wrote %s output for %s", format, name)
		}
	}

	return errors.Join(errs...)
}

// inInbox reports whether path sits directly in the input folder. Files
// processed from elsewhere are left where they are.
func (p *implProcessor) inInbox(path string) bool {
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return false
	}
	inbox, err := filepath.Abs(p.cfg.Paths.Input)
	if err != nil {
		return false
	}
	return dir == inbox
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
