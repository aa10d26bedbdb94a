package reranker

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

func newClient(url string) *Client {
	return NewClient(&config.RerankerConfig{BaseURL: url, Model: "bge-reranker-base", Timeout: 5 * time.Second})
}

func TestClient_Score(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rerank", r.URL.Path)

		var req RerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "fever", req.Query)
		require.Len(t, req.Texts, 3)

		// 按分数降序返回
		_, _ = w.Write([]byte(`[{"index":2,"score":0.9},{"index":0,"score":0.5},{"index":1,"score":-1.2}]`))
	}))
	defer srv.Close()

	scores, err := newClient(srv.URL).Score(context.Background(), "fever", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -1.2, 0.9}, scores)
}

func TestClient_Score_InvalidResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"数量不符", `[{"index":0,"score":0.1}]`},
		{"下标越界", `[{"index":0,"score":0.1},{"index":5,"score":0.2}]`},
		{"下标重复", `[{"index":0,"score":0.1},{"index":0,"score":0.2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Score(context.Background(), "q", []string{"a", "b"})
			assert.Error(t, err)
		})
	}
}

func TestClient_Score_Empty(t *testing.T) {
	scores, err := newClient("http://127.0.0.1:1").Score(context.Background(), "q", nil)
	assert.NoError(t, err)
	assert.Nil(t, scores)
}

func TestClient_ModelName(t *testing.T) {
	assert.Equal(t, "bge-reranker-base", newClient("http://x").ModelName())
}
