package triage

import (
	"context"

	"github.com/ontariodoctor/backend/internal/domain/rag"
)

// DocumentRetriever 流水线依赖的检索能力（混合检索 + 重排）
type DocumentRetriever interface {
	Retrieve(ctx context.Context, query string, k, rerankTopN int) ([]rag.RetrievedDocument, error)
}

// TextGenerator 外部文本生成能力
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// TraceRecord 一次流水线运行的结构化轨迹
type TraceRecord struct {
	TraceID        string   `json:"trace_id"`
	Triage         Level    `json:"triage"`
	RedFlags       []string `json:"red_flags"`
	RetrievedCount int      `json:"retrieved_docs_count"`
	CitationCount  int      `json:"citations_count"`
	AnswerLength   int      `json:"answer_length"`
	Age            *int     `json:"age,omitempty"`
	Symptoms       []string `json:"symptoms,omitempty"`
	QueryTerms     []string `json:"query_terms,omitempty"`
	Stages         []string `json:"stages"`
	LatencyMS      int64    `json:"latency_ms"`
	CreatedAt      int64    `json:"created_at"`
}

// TraceRepository 轨迹持久化
type TraceRepository interface {
	SaveTrace(ctx context.Context, record *TraceRecord) error
	GetTrace(ctx context.Context, traceID string) (*TraceRecord, error)
}
