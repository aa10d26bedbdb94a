package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/interfaces/http/handler"
	"github.com/ontariodoctor/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(burst int) *HTTPServer {
	return NewServer(
		&config.ServerConfig{HTTPPort: ":0", ShutdownTimeout: time.Second},
		&config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: burst},
		handler.NewChatHandler(nil),
		handler.NewRetrieveHandler(nil),
		handler.NewIngestHandler(nil),
		handler.NewHealthHandler(nil, nil, nil, nil, nil),
		nil,
	)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(1)

	t.Run("metrics 端点", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	})

	t.Run("chat 限流", func(t *testing.T) {
		codes := make([]int, 0, 2)
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString(`{"messages":[]}`))
			req.Header.Set("Content-Type", "application/json")
			req.RemoteAddr = "192.0.2.1:5555"
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}
		assert.Equal(t, []int{http.StatusBadRequest, http.StatusTooManyRequests}, codes)
	})

	t.Run("retrieve 不限流", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/retrieve", bytes.NewBufferString(`{"k":0}`))
			req.Header.Set("Content-Type", "application/json")
			req.RemoteAddr = "192.0.2.1:5555"
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	})

	t.Run("未注册路由", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_StopBeforeStart(t *testing.T) {
	assert.NoError(t, newTestServer(1).Stop())
}
