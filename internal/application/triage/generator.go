package triage

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/infrastructure/metrics"
)

// AnswerGenerator 生成最终回答：急诊走模板，其余调用生成模型
type AnswerGenerator struct {
	llm     domainTriage.TextGenerator
	timeout time.Duration
	region  string
	logger  *slog.Logger
}

// NewAnswerGenerator 创建回答生成器
func NewAnswerGenerator(llm domainTriage.TextGenerator, genCfg *config.GenerationConfig, retrievalCfg *config.RetrievalConfig) *AnswerGenerator {
	return &AnswerGenerator{
		llm:     llm,
		timeout: genCfg.Timeout,
		region:  retrievalCfg.Tenant,
		logger:  log.NewModuleLogger("triage", "generator"),
	}
}

// Answer 生成回答，任何生成失败都返回安全兜底文案
func (g *AnswerGenerator) Answer(ctx context.Context, state *domainTriage.PipelineState) string {
	if state.RedFlagCheck != nil && state.RedFlagCheck.ERRequired {
		g.logger.Info("Emergency path, using template answer", "trace_id", state.TraceID)
		return BuildEmergencyAnswer(state.RedFlagCheck, state.Triage, state.Citations)
	}

	question := state.UserQuestion()
	if state.ContextText == "" || strings.TrimSpace(question) == "" {
		g.logger.Error("Missing context or user question for generation", "trace_id", state.TraceID)
		return InsufficientInfoAnswer
	}

	userPrompt := BuildUserPrompt(state.ContextText, state.Features, question, g.region)

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	answer, err := g.llm.Generate(ctx, SystemPrompt, userPrompt)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = errEmptyAnswer
	}
	if err != nil {
		metrics.RecordDegraded("generation", generationFailureReason(ctx, err))
		g.logger.Error("Generation failed, returning safe-harbor answer",
			append(log.LogCtxFromContext(ctx), "trace_id", state.TraceID, "error", err)...,
		)
		return SafeHarborAnswer
	}

	answer = strings.TrimSpace(answer)
	g.logger.Info("Generated answer", "trace_id", state.TraceID, "chars", len(answer))
	return answer
}
