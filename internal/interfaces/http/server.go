package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/interfaces/http/handler"
	"github.com/ontariodoctor/backend/internal/interfaces/http/middleware"
	"github.com/ontariodoctor/backend/internal/interfaces/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ontariodoctor/backend/docs" // Swagger docs
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router          *gin.Engine
	httpPort        string
	shutdownTimeout time.Duration
	server          *http.Server
	logger          *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	cfg *config.ServerConfig,
	rateLimitCfg *config.RateLimitConfig,
	chatHandler *handler.ChatHandler,
	retrieveHandler *handler.RetrieveHandler,
	ingestHandler *handler.IngestHandler,
	healthHandler *handler.HealthHandler,
	mcpServer *mcp.MCPServer,
) *HTTPServer {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Metrics())

	logger := log.NewModuleLogger("http", "server")
	limiter := middleware.NewRateLimiter(rateLimitCfg)

	api := router.Group("/api/v1")
	api.Use(middleware.EnsureUTF8Body())
	{
		api.POST("/chat", limiter.Middleware(), chatHandler.Chat)
		api.POST("/retrieve", retrieveHandler.Retrieve)
		api.POST("/ingest", ingestHandler.Ingest)
	}

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// MCP SSE 端点
	if mcpServer != nil {
		router.Any("/mcp/sse", gin.WrapH(mcpServer.GetHandler()))
	}

	return &HTTPServer{
		router:          router,
		httpPort:        cfg.HTTPPort,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Handler 返回路由（测试用）
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start 启动服务器，阻塞直到关闭
func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:              s.httpPort,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP server starting",
		"port", s.httpPort,
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Stop 停止服务器
func (s *HTTPServer) Stop() error {
	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(ctx)
}
