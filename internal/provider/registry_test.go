package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/notes-flow/internal/apperr"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/internal/resilience"
	"github.com/nguyentantai21042004/notes-flow/internal/settings"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(url string) *Registry {
	return NewRegistry(
		OllamaConfig{BaseURL: url, Model: "llama3.1:8b", Timeout: 5 * time.Second, Policy: resilience.DefaultPolicy().WithoutDelays()},
		GeminiConfig{Model: "gemini-2.5-flash", FallbackModel: "gemini-2.0-flash"},
		logger.NewNop(),
	)
}

func TestRegistryCloudReady(t *testing.T) {
	r := newTestRegistry("http://localhost:11434")

	require.False(t, r.CloudReady(settings.Settings{}, ""))
	require.True(t, r.CloudReady(settings.Settings{}, "call-key"))
	require.True(t, r.CloudReady(settings.Settings{Credential: "stored"}, ""))
}

func TestRegistryCloudWithoutKey(t *testing.T) {
	r := newTestRegistry("http://localhost:11434")

	_, err := r.Resolve(context.Background(), settings.ModeCloud, settings.Settings{}, "")
	require.True(t, apperr.IsCode(err, apperr.CodeCredentialMissing))

	p, err := r.Resolve(context.Background(), settings.ModeCloud, settings.Settings{CloudModel: "gemini-2.5-pro"}, "k")
	require.NoError(t, err)
	require.Equal(t, "gemini/gemini-2.5-pro", p.Name())

	// The client created above now makes cloud ready without any key.
	require.True(t, r.CloudReady(settings.Settings{}, ""))
}

func TestRegistryLocalReusesAndReconfigures(t *testing.T) {
	fake := &fakeOllama{models: []string{"llama3.1:8b", "phi3:mini"}}
	srv := fake.server(t)
	r := newTestRegistry(srv.URL)

	s := settings.Settings{LocalURL: srv.URL, LocalModel: "llama3.1:8b"}
	first, err := r.Resolve(context.Background(), settings.ModeLocal, s, "")
	require.NoError(t, err)
	require.Equal(t, "ollama/llama3.1:8b", first.Name())

	s.LocalModel = "phi3:mini"
	second, err := r.Resolve(context.Background(), settings.ModeLocal, s, "")
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, "ollama/phi3:mini", second.Name())
}

// keyCheckingGemini accepts only goodKey and records every key it receives.
type keyCheckingGemini struct {
	goodKey string

	mu   sync.Mutex
	keys []string
}

func (f *keyCheckingGemini) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-goog-api-key")
		f.mu.Lock()
		f.keys = append(f.keys, key)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if key != f.goodKey {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT","details":[{"@type":"type.googleapis.com/google.rpc.ErrorInfo","reason":"API_KEY_INVALID","domain":"googleapis.com"}]}}`))
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"## Summary\n- ok"}]}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (f *keyCheckingGemini) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func TestRegistryCallKeyReplacesRejectedConfigKey(t *testing.T) {
	fake := &keyCheckingGemini{goodKey: "fresh-call-key"}
	srv := fake.server(t)

	r := NewRegistry(
		OllamaConfig{BaseURL: "http://localhost:11434", Model: "llama3.1:8b"},
		GeminiConfig{
			Model:   "gemini-2.5-flash",
			APIKey:  "stale-config-key",
			BaseURL: srv.URL,
			Policy:  resilience.DefaultPolicy().WithoutDelays(),
		},
		logger.NewNop(),
	)
	s := settings.Settings{Mode: settings.ModeCloud, Credential: "stale-config-key"}
	ctx := context.Background()

	p, err := r.Resolve(ctx, settings.ModeCloud, s, "")
	require.NoError(t, err)
	_, err = p.Generate(ctx, "summarize", Options{})
	require.True(t, apperr.IsCode(err, apperr.CodeCredentialMissing))

	p, err = r.Resolve(ctx, settings.ModeCloud, s, "fresh-call-key")
	require.NoError(t, err)
	text, err := p.Generate(ctx, "summarize", Options{})
	require.NoError(t, err)
	require.Equal(t, "## Summary\n- ok", text)

	// A second call in the same run keeps the call key.
	_, err = p.Generate(ctx, "synthesize", Options{})
	require.NoError(t, err)

	require.Equal(t, []string{"stale-config-key", "fresh-call-key", "fresh-call-key"}, fake.seen())
}
