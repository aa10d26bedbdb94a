package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainRAG "github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/infrastructure/metrics"
	"github.com/ontariodoctor/backend/internal/infrastructure/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// HybridRetriever 向量 + BM25 混合检索
type HybridRetriever struct {
	embedder  domainRAG.Embedder
	vectors   domainRAG.VectorIndex
	lexical   *LexicalIndex
	partition domainRAG.Partition
	rrfK      int
	logger    *slog.Logger
}

// NewHybridRetriever 创建混合检索器
func NewHybridRetriever(
	embedder domainRAG.Embedder,
	vectors domainRAG.VectorIndex,
	lexical *LexicalIndex,
	cfg *config.RetrievalConfig,
) *HybridRetriever {
	return &HybridRetriever{
		embedder:  embedder,
		vectors:   vectors,
		lexical:   lexical,
		partition: domainRAG.Partition{Tenant: cfg.Tenant, Lang: cfg.Lang},
		rrfK:      cfg.RRFConstant,
		logger:    log.NewModuleLogger("rag", "hybrid_retriever"),
	}
}

// Retrieve 两路检索后做 RRF 融合，结果不超过 topK
// 任一路失败时返回空列表，错误不外抛
func (r *HybridRetriever) Retrieve(ctx context.Context, query string, kVector, kBM25, topK int) []domainRAG.RetrievedDocument {
	ctx, span := tracing.Tracer("rag").Start(ctx, "rag.hybrid_retrieve")
	defer span.End()

	// 整个检索只加载一次快照
	snapshot := r.lexical.Snapshot()

	var vectorHits, lexicalHits []domainRAG.RetrievedDocument
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		start := time.Now()
		defer metrics.ObserveRetrievalArm("vector", start)

		vec, err := r.embedder.EmbedQuery(gctx, query)
		if err != nil {
			metrics.RecordDegraded("retrieval", "embedding")
			return fmt.Errorf("embed query: %w", err)
		}
		hits, err := r.vectors.Search(gctx, vec, kVector, r.partition)
		if err != nil {
			metrics.RecordDegraded("retrieval", "vector_index")
			return fmt.Errorf("vector search: %w", err)
		}
		vectorHits = hits
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		defer metrics.ObserveRetrievalArm("lexical", start)

		lexicalHits = snapshot.Search(query, kBM25, r.partition)
		return nil
	})

	if err := g.Wait(); err != nil {
		r.logger.Warn("Hybrid retrieval degraded to empty result",
			append(log.LogCtxFromContext(ctx), "error", err)...,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieval degraded")
		return []domainRAG.RetrievedDocument{}
	}

	fused := FuseRRF(r.rrfK, topK, vectorHits, lexicalHits)

	span.SetAttributes(
		attribute.Int("rag.vector_hits", len(vectorHits)),
		attribute.Int("rag.lexical_hits", len(lexicalHits)),
		attribute.Int("rag.fused_hits", len(fused)),
	)
	r.logger.Debug("Hybrid retrieval completed",
		"vector_hits", len(vectorHits),
		"lexical_hits", len(lexicalHits),
		"fused_hits", len(fused),
		"snapshot_size", snapshot.Size(),
	)
	return fused
}
