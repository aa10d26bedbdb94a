package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	domainRAG "github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/infrastructure/metrics"
)

// Reranker 用交叉编码器对候选重新打分
type Reranker struct {
	encoder domainRAG.CrossEncoder
	logger  *slog.Logger
}

// NewReranker 创建重排器
func NewReranker(encoder domainRAG.CrossEncoder) *Reranker {
	return &Reranker{
		encoder: encoder,
		logger:  log.NewModuleLogger("rag", "reranker"),
	}
}

// Rerank 候选数超过 topN 时打分并返回分数最高的 topN 个，否则原样返回
// 候选缺少 doc_id 或正文时返回 ErrContractViolation；
// 打分服务失败时退化为融合结果的前 topN 个
func (r *Reranker) Rerank(ctx context.Context, query string, docs []domainRAG.RetrievedDocument, topN int) ([]domainRAG.RetrievedDocument, error) {
	if topN <= 0 || len(docs) <= topN {
		return docs, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		if d.DocID == "" || d.Text == "" {
			return nil, fmt.Errorf("%w: rerank candidate %d missing doc_id or text", domainRAG.ErrContractViolation, i)
		}
		texts[i] = d.Text
	}

	scores, err := r.encoder.Score(ctx, query, texts)
	if err == nil && len(scores) != len(docs) {
		err = fmt.Errorf("expected %d scores, got %d", len(docs), len(scores))
	}
	if err != nil {
		metrics.RecordDegraded("reranker", "score_failed")
		r.logger.Warn("Reranking failed, keeping fused order",
			append(log.LogCtxFromContext(ctx), "model", r.encoder.ModelName(), "error", err)...,
		)
		fallback := make([]domainRAG.RetrievedDocument, topN)
		copy(fallback, docs[:topN])
		return fallback, nil
	}

	reranked := make([]domainRAG.RetrievedDocument, len(docs))
	copy(reranked, docs)
	for i := range reranked {
		reranked[i].Score = scores[i]
	}
	sort.SliceStable(reranked, func(a, b int) bool {
		return reranked[a].Score > reranked[b].Score
	})

	r.logger.Debug("Reranked candidates", "candidates", len(docs), "top_n", topN)
	return reranked[:topN], nil
}
