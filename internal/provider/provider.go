// Package provider adapts the local (Ollama) and cloud (Gemini) model backends
// to one generate contract.
package provider

import "context"

// Options tunes one generation call. Nil sampling fields and zero sizes fall
// back to the adapter's configured defaults; an explicit Float(0) is kept.
type Options struct {
	Temperature   *float64
	TopP          *float64
	ContextWindow int
	Threads       int
}

// Float returns a pointer to v for the sampling fields of Options.
func Float(v float64) *float64 {
	return &v
}

// Provider is an LLM backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Substituter is implemented by providers that may run a different model than
// the one configured. Substitution returns a human-readable note, or "".
type Substituter interface {
	Substitution() string
}

func (o Options) merge(defaults Options) Options {
	if o.Temperature == nil {
		o.Temperature = defaults.Temperature
	}
	if o.TopP == nil {
		o.TopP = defaults.TopP
	}
	if o.ContextWindow == 0 {
		o.ContextWindow = defaults.ContextWindow
	}
	if o.Threads == 0 {
		o.Threads = defaults.Threads
	}
	return o
}
