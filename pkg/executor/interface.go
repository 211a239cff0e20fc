package executor

import "context"

// Executor defines the interface for executing external commands
type Executor interface {
	// Execute runs name with args. The captured Result is returned even when
	// the command exits non-zero so callers can salvage partial output.
	Execute(ctx context.Context, name string, args ...string) (Result, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (Result, error)
}

// Result holds everything a finished command produced
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}
