package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	appRAG "github.com/ontariodoctor/backend/internal/application/rag"
	"github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// 检索参数默认值
const (
	DefaultK          = 8
	DefaultRerankTopN = 3
)

// Searcher 检索能力
type Searcher interface {
	Search(ctx context.Context, query string, k, rerankTopN int) (*appRAG.SearchResult, error)
}

// RetrieveRequest 检索请求，k 与 rerank_top_n 省略时取默认值
type RetrieveRequest struct {
	Query      string `json:"query"`
	K          *int   `json:"k" binding:"omitempty,min=1,max=50"`
	RerankTopN *int   `json:"rerank_top_n" binding:"omitempty,min=1,max=20"`
}

// RetrieveHandler 检索处理器
type RetrieveHandler struct {
	search Searcher
	logger *slog.Logger
}

// NewRetrieveHandler 创建检索处理器
func NewRetrieveHandler(search *appRAG.SearchService) *RetrieveHandler {
	return &RetrieveHandler{
		search: search,
		logger: log.NewModuleLogger("http", "retrieve"),
	}
}

// Retrieve 混合检索 + 重排
// @Summary 检索文档
// @Tags 检索
// @Accept json
// @Produce json
// @Param body body RetrieveRequest true "检索参数"
// @Success 200 {object} rag.SearchResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /retrieve [post]
func (h *RetrieveHandler) Retrieve(c *gin.Context) {
	var req RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeInvalidParams, "invalid retrieval request", err.Error())
		return
	}

	k, topN := DefaultK, DefaultRerankTopN
	if req.K != nil {
		k = *req.K
	}
	if req.RerankTopN != nil {
		topN = *req.RerankTopN
	}

	ctx := c.Request.Context()
	result, err := h.search.Search(ctx, req.Query, k, topN)
	if err != nil {
		h.logger.Error("Retrieval failed", append(log.LogCtxFromContext(ctx), "error", err)...)
		if errors.Is(err, rag.ErrContractViolation) {
			response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeContractViolation, "contract violation", err.Error())
			return
		}
		response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeInternal, "retrieval failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}
