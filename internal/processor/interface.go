package processor

import (
	"context"

	"github.com/nguyentantai21042004/notes-flow/internal/summarizer"
)

// Processor runs recordings from disk through the notes pipeline and writes
// the results to the output folder.
type Processor interface {
	// Process handles a recording with the configured defaults.
	Process(ctx context.Context, audioPath string) error
	// ProcessWith handles a recording with explicit per-call options. A
	// requires-action result is not an error.
	ProcessWith(ctx context.Context, audioPath string, opts summarizer.Options) (summarizer.Result, error)
}
