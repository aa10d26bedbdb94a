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

// Ingester 入库能力
type Ingester interface {
	Ingest(ctx context.Context, docs []rag.SourceDocument, origin string) (*rag.IngestResult, error)
}

// DocumentDTO 待入库文档
type DocumentDTO struct {
	Text    string `json:"text" binding:"required"`
	Title   string `json:"title" binding:"required"`
	URL     string `json:"url"`
	Source  string `json:"source" binding:"required"`
	Section string `json:"section"`
}

// IngestRequest 入库请求
type IngestRequest struct {
	Documents []DocumentDTO `json:"documents" binding:"dive"`
}

// IngestHandler 入库处理器
type IngestHandler struct {
	ingester Ingester
	logger   *slog.Logger
}

// NewIngestHandler 创建入库处理器
func NewIngestHandler(ingester *appRAG.IngestService) *IngestHandler {
	return &IngestHandler{
		ingester: ingester,
		logger:   log.NewModuleLogger("http", "ingest"),
	}
}

// Ingest 入库一批文档
// @Summary 入库文档
// @Tags 检索
// @Accept json
// @Produce json
// @Param body body IngestRequest true "文档批次"
// @Success 200 {object} rag.IngestResult
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /ingest [post]
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeInvalidParams, "invalid ingest request", err.Error())
		return
	}

	docs := make([]rag.SourceDocument, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = rag.SourceDocument{Text: d.Text, Title: d.Title, URL: d.URL, Source: d.Source, Section: d.Section}
	}

	ctx := c.Request.Context()
	result, err := h.ingester.Ingest(ctx, docs, appRAG.OriginHTTP)
	if err != nil {
		if errors.Is(err, rag.ErrNoDocuments) {
			response.Error(c, http.StatusBadRequest, response.CodeNoDocuments, "no documents to ingest")
			return
		}
		h.logger.Error("Ingest failed", append(log.LogCtxFromContext(ctx), "documents", len(docs), "error", err)...)
		response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeIngestFailed, "ingest failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}
