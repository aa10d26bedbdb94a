package triage

import (
	"context"
	"log/slog"
	"time"

	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
)

// TraceLogger 记录一次运行的结构化轨迹，只读状态，自身失败不影响请求
type TraceLogger struct {
	repo   domainTriage.TraceRepository
	logger *slog.Logger
}

// NewTraceLogger 创建轨迹记录器，repo 可为 nil（只写日志）
func NewTraceLogger(repo domainTriage.TraceRepository) *TraceLogger {
	return &TraceLogger{
		repo:   repo,
		logger: log.NewModuleLogger("triage", "trace"),
	}
}

// BuildTraceRecord 由流水线状态生成轨迹记录
func BuildTraceRecord(state *domainTriage.PipelineState) *domainTriage.TraceRecord {
	rec := &domainTriage.TraceRecord{
		TraceID:        state.TraceID,
		Triage:         state.Triage,
		RedFlags:       []string{},
		RetrievedCount: len(state.RetrievedDocs),
		CitationCount:  len(state.Citations),
		AnswerLength:   len(state.Answer),
		LatencyMS:      time.Since(state.StartedAt).Milliseconds(),
		CreatedAt:      time.Now().Unix(),
	}
	if state.RedFlagCheck != nil {
		rec.RedFlags = append(rec.RedFlags, state.RedFlagCheck.RedFlags...)
	}
	if f := state.Features; f != nil {
		if f.Age != nil {
			age := *f.Age
			rec.Age = &age
		}
		rec.Symptoms = append([]string{}, f.Symptoms...)
		rec.QueryTerms = append([]string{}, f.QueryTerms...)
	}
	for _, st := range state.History {
		rec.Stages = append(rec.Stages, st.String())
	}
	return rec
}

// Log 写日志并持久化，错误和 panic 都被吞掉
func (l *TraceLogger) Log(ctx context.Context, state *domainTriage.PipelineState) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Trace logging panicked", "trace_id", state.TraceID, "panic", r)
		}
	}()

	rec := BuildTraceRecord(state)
	age := any("unknown")
	if rec.Age != nil {
		age = *rec.Age
	}
	l.logger.Info("Trace",
		"trace_id", rec.TraceID,
		"triage", rec.Triage,
		"red_flags", rec.RedFlags,
		"retrieved_docs_count", rec.RetrievedCount,
		"citations_count", rec.CitationCount,
		"answer_length", rec.AnswerLength,
		"age", age,
		"symptoms", rec.Symptoms,
		"query_terms", rec.QueryTerms,
		"latency_ms", rec.LatencyMS,
	)

	if l.repo == nil {
		return
	}
	if err := l.repo.SaveTrace(ctx, rec); err != nil {
		l.logger.Warn("Failed to persist trace", "trace_id", rec.TraceID, "error", err)
	}
}
