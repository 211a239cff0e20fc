package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/notes-flow/internal/apperr"
	"github.com/nguyentantai21042004/notes-flow/internal/provider"
)

// Per-stage sampling. Cleanup must not paraphrase; synthesis may.
var (
	sanitizeOptions  = provider.Options{Temperature: provider.Float(0.1)}
	extractOptions   = provider.Options{Temperature: provider.Float(0.2)}
	synthesisOptions = provider.Options{Temperature: provider.Float(0.3)}
)

// chunkStep is one iteration of the long-path fold:
// (breadcrumb, chunk) -> (breadcrumb', extraction block).
type chunkStep func(ctx context.Context, crumb, chunk string) (string, string, error)

// foldResult collects what the fold produced.
type foldResult struct {
	blocks []string
	failed []int
}

// foldChunks runs step over chunks strictly in order. A failed chunk is
// skipped and leaves the breadcrumb as it was. ctx is checked between chunks.
func (s *implSummarizer) foldChunks(ctx context.Context, chunks []string, step chunkStep) (foldResult, error) {
	var out foldResult
	crumb := ""

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("stopped before chunk %d/%d: %w", i+1, len(chunks), err)
		}

		s.logger.Info(ctx, "[%d/%d] Processing chunk (%d characters)", i+1, len(chunks), len([]rune(chunk)))
		next, block, err := step(ctx, crumb, chunk)
		if err != nil {
			if apperr.IsCode(err, apperr.CodeCredentialMissing) {
				return out, err
			}
			s.logger.Warn(ctx, "[%d/%d] Chunk skipped: %v", i+1, len(chunks), apperr.Wrapf(err, apperr.CodeChunkProcessingFailure, "chunk %d", i+1))
			out.failed = append(out.failed, i+1)
			continue
		}

		out.blocks = append(out.blocks, block)
		crumb = next
	}
	return out, nil
}

// chunkStepFor builds the sanitize-then-extract step bound to p.
func (s *implSummarizer) chunkStepFor(p provider.Provider) chunkStep {
	return func(ctx context.Context, crumb, chunk string) (string, string, error) {
		sanitized, err := p.Generate(ctx, sanitizePrompt(chunk), sanitizeOptions)
		if err != nil {
			return crumb, "", fmt.Errorf("sanitize: %w", err)
		}
		sanitized = strings.TrimSpace(sanitized)
		if sanitized == "" {
			sanitized = chunk
		}

		block, err := p.Generate(ctx, s.extractPrompt(crumb, sanitized), extractOptions)
		if err != nil {
			return crumb, "", fmt.Errorf("extract: %w", err)
		}
		block = strings.TrimSpace(block)
		if block == "" {
			return crumb, "", fmt.Errorf("extract: empty response")
		}

		next := Breadcrumb(block)
		if next == "" {
			next = crumb
		}
		return next, block, nil
	}
}
