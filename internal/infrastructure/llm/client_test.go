package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url, mode string) *config.GenerationConfig {
	return &config.GenerationConfig{
		BaseURL:     url,
		Model:       "test-model",
		Mode:        mode,
		Temperature: 0.2,
		TopP:        0.95,
		MaxTokens:   512,
		Stop:        []string{"\n\n", "Question:", "User:"},
		Timeout:     5 * time.Second,
	}
}

func TestClient_Generate_Completions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/completions", r.URL.Path)

		var req CompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SYS\n\nUSER\n\nAnswer:", req.Prompt)
		assert.Equal(t, 0.2, req.Temperature)
		assert.Equal(t, 0.95, req.TopP)
		assert.Equal(t, 512, req.MaxTokens)
		assert.Equal(t, []string{"\n\n", "Question:", "User:"}, req.Stop)
		assert.False(t, req.Stream)

		_, _ = w.Write([]byte(`{"choices":[{"text":"  Rest and fluids.  "}]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL+"/v1/", ModeCompletions))
	text, err := c.Generate(context.Background(), "SYS", "USER")
	require.NoError(t, err)
	assert.Equal(t, "Rest and fluids.", text)
}

func TestClient_Generate_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"See a doctor."}}]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, ModeChat))
	text, err := c.Generate(context.Background(), "SYS", "USER")
	require.NoError(t, err)
	assert.Equal(t, "See a doctor.", text)
}

func TestClient_Generate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"非 200", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}},
		{"空 choices", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}},
		{"非法 JSON", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(testConfig(srv.URL, ModeCompletions))
			_, err := c.Generate(context.Background(), "SYS", "USER")
			assert.Error(t, err)
		})
	}
}

func TestClient_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, ModeCompletions))
	assert.NoError(t, c.HealthCheck(context.Background()))
}
