package rag

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainRAG "github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
)

// SearchResult 检索接口返回值
type SearchResult struct {
	Hits      []domainRAG.RetrievedDocument `json:"hits"`
	LatencyMS int64                         `json:"latency_ms"`
}

// SearchService 混合检索 + 重排
type SearchService struct {
	retriever    *HybridRetriever
	reranker     *Reranker
	lexicalExtra int
	logger       *slog.Logger
}

var _ triage.DocumentRetriever = (*SearchService)(nil)

// NewSearchService 创建检索服务
func NewSearchService(retriever *HybridRetriever, reranker *Reranker, cfg *config.RetrievalConfig) *SearchService {
	return &SearchService{
		retriever:    retriever,
		reranker:     reranker,
		lexicalExtra: cfg.LexicalExtra,
		logger:       log.NewModuleLogger("rag", "search"),
	}
}

// Retrieve 检索并重排，空查询返回空列表
// 只有 ErrContractViolation 会作为错误返回
func (s *SearchService) Retrieve(ctx context.Context, query string, k, rerankTopN int) ([]domainRAG.RetrievedDocument, error) {
	if strings.TrimSpace(query) == "" {
		return []domainRAG.RetrievedDocument{}, nil
	}

	hits := s.retriever.Retrieve(ctx, query, k, k+s.lexicalExtra, k)
	reranked, err := s.reranker.Rerank(ctx, query, hits, rerankTopN)
	if err != nil {
		s.logger.Error("Rerank contract violation",
			append(log.LogCtxFromContext(ctx), "query", query, "error", err)...,
		)
		return nil, err
	}
	return reranked, nil
}

// Search Retrieve 并记录耗时
func (s *SearchService) Search(ctx context.Context, query string, k, rerankTopN int) (*SearchResult, error) {
	start := time.Now()
	hits, err := s.Retrieve(ctx, query, k, rerankTopN)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Hits: hits, LatencyMS: time.Since(start).Milliseconds()}, nil
}
