package summarizer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/notes-flow/internal/config"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/internal/provider"
	"github.com/nguyentantai21042004/notes-flow/internal/resilience"
	"github.com/nguyentantai21042004/notes-flow/internal/settings"
	"github.com/stretchr/testify/require"
)

func TestRetryWithSuppliedKeyAfterRejection(t *testing.T) {
	var (
		mu   sync.Mutex
		keys []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-goog-api-key")
		mu.Lock()
		keys = append(keys, key)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if key != "fresh-key" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT","details":[{"@type":"type.googleapis.com/google.rpc.ErrorInfo","reason":"API_KEY_INVALID"}]}}`))
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"## Summary\n- budget approved"}]}}]}`))
	}))
	defer srv.Close()

	registry := provider.NewRegistry(
		provider.OllamaConfig{BaseURL: "http://localhost:11434", Model: "llama3.1:8b"},
		provider.GeminiConfig{
			Model:   "gemini-2.5-flash",
			APIKey:  "config-key",
			BaseURL: srv.URL,
			Policy:  resilience.DefaultPolicy().WithoutDelays(),
		},
		logger.NewNop(),
	)
	store := settings.NewStore(settings.Settings{
		Mode:       settings.ModeCloud,
		CloudModel: "gemini-2.5-flash",
		Credential: "config-key",
	})
	tr := &stubTranscriber{text: "We approved the budget."}
	s := New(config.Default(), tr, registry, store, logger.NewNop())

	first := s.ProcessRecording(context.Background(), []byte("audio"), Options{Mode: settings.ModeCloud})
	require.False(t, first.Success)
	require.Equal(t, ActionProvideGeminiKey, first.RequiresAction)
	require.Empty(t, first.Error)

	second := s.ProcessRecording(context.Background(), nil, Options{
		Mode:                  settings.ModeCloud,
		Credential:            "fresh-key",
		TranscriptionOverride: first.Transcription,
	})
	require.True(t, second.Success, second.Error)
	require.Equal(t, "## Summary\n- budget approved", second.Notes)
	require.Equal(t, 1, tr.calls)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"config-key", "fresh-key"}, keys)
}
