package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ontariodoctor/backend/internal/domain/triage"
)

var _ triage.TraceRepository = (*TraceRepositoryImpl)(nil)

// TraceRepositoryImpl 流水线轨迹仓库
type TraceRepositoryImpl struct {
	db *sql.DB
}

// NewTraceRepository 创建轨迹仓库
func NewTraceRepository(db *sql.DB) *TraceRepositoryImpl {
	return &TraceRepositoryImpl{db: db}
}

// SaveTrace 保存轨迹
func (r *TraceRepositoryImpl) SaveTrace(ctx context.Context, rec *triage.TraceRecord) error {
	redFlags, _ := json.Marshal(nonNil(rec.RedFlags))
	symptoms, _ := json.Marshal(nonNil(rec.Symptoms))
	terms, _ := json.Marshal(nonNil(rec.QueryTerms))
	stages, _ := json.Marshal(nonNil(rec.Stages))

	var age sql.NullInt64
	if rec.Age != nil {
		age = sql.NullInt64{Int64: int64(*rec.Age), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO triage_traces (
			trace_id, triage, red_flags, retrieved_count, citation_count, answer_length,
			age, symptoms, query_terms, stages, latency_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TraceID, string(rec.Triage), string(redFlags), rec.RetrievedCount, rec.CitationCount,
		rec.AnswerLength, age, string(symptoms), string(terms), string(stages), rec.LatencyMS, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save trace: %w", err)
	}
	return nil
}

// GetTrace 按 trace_id 查询，不存在时返回 nil, nil
func (r *TraceRepositoryImpl) GetTrace(ctx context.Context, traceID string) (*triage.TraceRecord, error) {
	var (
		rec                                      triage.TraceRecord
		level, redFlags, symptoms, terms, stages string
		age                                      sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT trace_id, triage, red_flags, retrieved_count, citation_count, answer_length,
			age, symptoms, query_terms, stages, latency_ms, created_at
		FROM triage_traces WHERE trace_id = ?`, traceID).Scan(
		&rec.TraceID, &level, &redFlags, &rec.RetrievedCount, &rec.CitationCount, &rec.AnswerLength,
		&age, &symptoms, &terms, &stages, &rec.LatencyMS, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trace: %w", err)
	}

	rec.Triage = triage.Level(level)
	if age.Valid {
		a := int(age.Int64)
		rec.Age = &a
	}
	_ = json.Unmarshal([]byte(redFlags), &rec.RedFlags)
	_ = json.Unmarshal([]byte(symptoms), &rec.Symptoms)
	_ = json.Unmarshal([]byte(terms), &rec.QueryTerms)
	_ = json.Unmarshal([]byte(stages), &rec.Stages)
	return &rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
