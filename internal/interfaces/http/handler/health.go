package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	appRAG "github.com/ontariodoctor/backend/internal/application/rag"
	"github.com/ontariodoctor/backend/internal/infrastructure/embedding"
	"github.com/ontariodoctor/backend/internal/infrastructure/llm"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/infrastructure/reranker"
	"github.com/ontariodoctor/backend/internal/infrastructure/vector"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// 整体健康状态
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

const healthProbeTimeout = 5 * time.Second

var errLexicalEmpty = errors.New("lexical snapshot is empty")

// HealthChecker 可探活的依赖
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheckFunc 函数形式的 HealthChecker
type HealthCheckFunc func(ctx context.Context) error

// HealthCheck 实现 HealthChecker
func (f HealthCheckFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// HealthProbe 命名探针
type HealthProbe struct {
	Name    string
	Checker HealthChecker
}

// ServiceHealth 单个依赖的探活结果
type ServiceHealth struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthResponse 健康检查响应，services 按探针注册顺序
type HealthResponse struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	probes  []HealthProbe
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(
	store *vector.QdrantStore,
	generator *llm.Client,
	embedder *embedding.Client,
	encoder *reranker.Client,
	lexical *appRAG.LexicalIndex,
) *HealthHandler {
	return newHealthHandler(
		HealthProbe{Name: "qdrant", Checker: store},
		HealthProbe{Name: "llm", Checker: generator},
		HealthProbe{Name: "embedding", Checker: embedder},
		HealthProbe{Name: "reranker", Checker: encoder},
		HealthProbe{Name: "lexical", Checker: LexicalProbe(lexical)},
	)
}

func newHealthHandler(probes ...HealthProbe) *HealthHandler {
	return &HealthHandler{
		probes:  probes,
		timeout: healthProbeTimeout,
		logger:  log.NewModuleLogger("http", "health"),
	}
}

// LexicalProbe 词法快照为空视为不健康
func LexicalProbe(index *appRAG.LexicalIndex) HealthChecker {
	return HealthCheckFunc(func(context.Context) error {
		if index == nil || index.Size() == 0 {
			return errLexicalEmpty
		}
		return nil
	})
}

// Health 并发探活所有依赖
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.check(c.Request.Context()))
}

func (h *HealthHandler) check(ctx context.Context) HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	services := make([]ServiceHealth, len(h.probes))

	g, gctx := errgroup.WithContext(ctx)
	for i, probe := range h.probes {
		g.Go(func() error {
			start := time.Now()
			err := probe.Checker.HealthCheck(gctx)
			result := ServiceHealth{
				Name:      probe.Name,
				Status:    StatusHealthy,
				LatencyMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				result.Status = StatusUnhealthy
				result.Error = err.Error()
				h.logger.Warn("Health probe failed", "service", probe.Name, "error", err)
			}
			// 各探针写入自己的下标，无需加锁
			services[i] = result
			// 探针失败不取消其他探针
			return nil
		})
	}
	_ = g.Wait()

	healthy := 0
	for _, svc := range services {
		if svc.Status == StatusHealthy {
			healthy++
		}
	}

	status := StatusDegraded
	switch {
	case healthy == len(services):
		status = StatusHealthy
	case healthy == 0:
		status = StatusUnhealthy
	}

	return HealthResponse{Status: status, Services: services}
}
