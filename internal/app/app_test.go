package app

import (
	"testing"

	"github.com/nguyentantai21042004/notes-flow/internal/apperr"
	"github.com/nguyentantai21042004/notes-flow/internal/config"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/internal/settings"
	"github.com/stretchr/testify/require"
)

func TestNewSeedsSettingsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.Mode = "cloud"
	cfg.Gemini.APIKey = "key"

	a, err := New(cfg, logger.NewNop())
	require.NoError(t, err)

	snap := a.Settings.Snapshot()
	require.Equal(t, settings.ModeCloud, snap.Mode)
	require.Equal(t, "http://localhost:11434", snap.LocalURL)
	require.True(t, a.Providers.CloudReady(snap, ""))
}

func TestNewRejectsBadEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Ollama.URL = "localhost"

	_, err := New(cfg, logger.NewNop())
	require.True(t, apperr.IsCode(err, apperr.CodeConfigInvalid))
}
