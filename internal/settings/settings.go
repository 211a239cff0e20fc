// Package settings holds the provider configuration that outlives a single
// pipeline run: mode, local endpoint and model, cloud model and credential.
package settings

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/notes-flow/internal/config"
)

// Mode selects the summarization backend.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeLocal Mode = "local"
	ModeCloud Mode = "cloud"
)

// ParseMode accepts auto, local or cloud (case-insensitive). Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeLocal:
		return ModeLocal, nil
	case ModeCloud:
		return ModeCloud, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want auto, local or cloud)", s)
	}
}

// Settings is an immutable snapshot handed to a pipeline run.
type Settings struct {
	Mode       Mode
	LocalURL   string
	LocalModel string
	CloudModel string
	Credential string
}

// HasCredential reports whether a cloud key is configured.
func (s Settings) HasCredential() bool {
	return strings.TrimSpace(s.Credential) != ""
}

// Validate checks the snapshot for values a provider could not use.
func (s Settings) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if s.LocalURL != "" {
		u, err := url.Parse(s.LocalURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid local endpoint %q", s.LocalURL)
		}
	}
	return nil
}

// FromConfig builds the initial snapshot from loaded configuration.
func FromConfig(cfg *config.Config) Settings {
	mode, err := ParseMode(cfg.Pipeline.Mode)
	if err != nil {
		mode = ModeAuto
	}
	return Settings{
		Mode:       mode,
		LocalURL:   cfg.Ollama.URL,
		LocalModel: cfg.Ollama.Model,
		CloudModel: cfg.Gemini.Model,
		Credential: cfg.Gemini.APIKey,
	}
}

// ResolveMode turns a requested mode into local or cloud. Explicit requests
// win; auto follows the configured mode, then prefers cloud when any
// credential is known, otherwise local.
func ResolveMode(requested Mode, s Settings, callCredential string) Mode {
	switch requested {
	case ModeLocal, ModeCloud:
		return requested
	}
	switch s.Mode {
	case ModeLocal, ModeCloud:
		return s.Mode
	}
	if s.HasCredential() || strings.TrimSpace(callCredential) != "" {
		return ModeCloud
	}
	return ModeLocal
}

// Store guards the process-wide settings. Update is the only way to mutate them.
type Store struct {
	mu      sync.RWMutex
	current Settings
}

// NewStore creates a Store seeded with initial.
func NewStore(initial Settings) *Store {
	return &Store{current: initial}
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies fn to a copy and commits it only if the result validates.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	fn(&next)
	if err := next.Validate(); err != nil {
		return s.current, fmt.Errorf("update settings: %w", err)
	}
	s.current = next
	return next, nil
}
