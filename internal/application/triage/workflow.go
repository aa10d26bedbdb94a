package triage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ontariodoctor/backend/internal/domain/rag"
	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/infrastructure/metrics"
	"github.com/ontariodoctor/backend/internal/infrastructure/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrStageRevisited 同一次运行中阶段重复执行
var ErrStageRevisited = errors.New("workflow stage revisited")

// ChatResult 一次对话运行的结果
type ChatResult struct {
	Answer    string                  `json:"answer"`
	Citations []domainTriage.Citation `json:"citations"`
	Triage    domainTriage.Level      `json:"triage"`
	RedFlags  []string                `json:"red_flags"`
	LatencyMS int64                   `json:"latency_ms"`
	TraceID   string                  `json:"trace_id"`
}

// stageHandler 进入某阶段时执行的动作
type stageHandler func(ctx context.Context, state *domainTriage.PipelineState) error

// Workflow 分诊流水线状态机
type Workflow struct {
	extractor  *FeatureExtractor
	guard      *RedFlagGuard
	retriever  domainTriage.DocumentRetriever
	generator  *AnswerGenerator
	trace      *TraceLogger
	k          int
	rerankTopN int
	timeout    time.Duration
	handlers   map[domainTriage.Stage]stageHandler
	logger     *slog.Logger
}

// NewWorkflow 创建流水线
func NewWorkflow(
	extractor *FeatureExtractor,
	guard *RedFlagGuard,
	retriever domainTriage.DocumentRetriever,
	generator *AnswerGenerator,
	trace *TraceLogger,
	cfg *config.RetrievalConfig,
) *Workflow {
	w := &Workflow{
		extractor:  extractor,
		guard:      guard,
		retriever:  retriever,
		generator:  generator,
		trace:      trace,
		k:          cfg.K,
		rerankTopN: cfg.RerankTopN,
		timeout:    cfg.Timeout,
		logger:     log.NewModuleLogger("triage", "workflow"),
	}
	w.handlers = map[domainTriage.Stage]stageHandler{
		domainTriage.StageFeaturesExtracted: w.extractFeatures,
		domainTriage.StageGuardEvaluated:    w.evaluateGuard,
		domainTriage.StageRetrieved:         w.retrieve,
		domainTriage.StageERShortcut:        w.skipRetrieval,
		domainTriage.StageContextAssembled:  w.assembleContext,
		domainTriage.StageAnswered:          w.answer,
		domainTriage.StageLogged:            w.logTrace,
	}
	return w
}

// Next 状态转移，唯一的分支在红旗评估之后
func Next(state *domainTriage.PipelineState) domainTriage.Stage {
	switch state.Stage {
	case domainTriage.StageStart:
		return domainTriage.StageFeaturesExtracted
	case domainTriage.StageFeaturesExtracted:
		return domainTriage.StageGuardEvaluated
	case domainTriage.StageGuardEvaluated:
		if state.RedFlagCheck != nil && state.RedFlagCheck.ERRequired {
			return domainTriage.StageERShortcut
		}
		return domainTriage.StageRetrieved
	case domainTriage.StageRetrieved, domainTriage.StageERShortcut:
		return domainTriage.StageContextAssembled
	case domainTriage.StageContextAssembled:
		return domainTriage.StageAnswered
	case domainTriage.StageAnswered:
		return domainTriage.StageLogged
	default:
		return domainTriage.StageDone
	}
}

// Run 对一组消息执行完整流水线，每次调用使用独立状态
// 只有检索阶段的契约错误会返回 error
func (w *Workflow) Run(ctx context.Context, messages []domainTriage.Message) (*ChatResult, *domainTriage.PipelineState, error) {
	state := domainTriage.NewPipelineState(messages)
	ctx = log.WithTraceID(ctx, state.TraceID)

	ctx, span := tracing.Tracer("triage").Start(ctx, "triage.workflow")
	defer span.End()
	span.SetAttributes(attribute.String("triage.trace_id", state.TraceID))

	for state.Stage != domainTriage.StageDone {
		next := Next(state)
		if state.Visited(next) {
			return nil, state, fmt.Errorf("%w: %s", ErrStageRevisited, next)
		}
		if err := w.runStage(ctx, next, state); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			w.logger.Error("Workflow failed",
				append(log.LogCtxFromContext(ctx), "stage", next.String(), "error", err)...,
			)
			return nil, state, err
		}
		state.Advance(next)
	}

	metrics.RecordTriage(string(state.Triage))
	span.SetAttributes(attribute.String("triage.level", string(state.Triage)))

	result := &ChatResult{
		Answer:    state.Answer,
		Citations: state.Citations,
		Triage:    state.Triage,
		RedFlags:  []string{},
		LatencyMS: time.Since(state.StartedAt).Milliseconds(),
		TraceID:   state.TraceID,
	}
	if state.RedFlagCheck != nil {
		result.RedFlags = state.RedFlagCheck.RedFlags
	}
	return result, state, nil
}

func (w *Workflow) runStage(ctx context.Context, stage domainTriage.Stage, state *domainTriage.PipelineState) error {
	handler, ok := w.handlers[stage]
	if !ok {
		return nil
	}

	ctx, span := tracing.Tracer("triage").Start(ctx, "triage.stage."+stage.String())
	defer span.End()
	start := time.Now()
	defer metrics.ObserveStage(stage.String(), start)

	return handler(ctx, state)
}

func (w *Workflow) extractFeatures(_ context.Context, state *domainTriage.PipelineState) error {
	if features, ok := w.extractor.Extract(state.Messages); ok {
		state.Features = features
	}
	return nil
}

func (w *Workflow) evaluateGuard(_ context.Context, state *domainTriage.PipelineState) error {
	state.RedFlagCheck = w.guard.Evaluate(state.UserQuestion(), state.Features)
	state.Triage = state.RedFlagCheck.Level()
	return nil
}

func (w *Workflow) retrieve(ctx context.Context, state *domainTriage.PipelineState) error {
	state.RetrievedDocs = []rag.RetrievedDocument{}

	query := state.Features.Query()
	if query == "" {
		w.logger.Warn("No query terms available for retrieval", "trace_id", state.TraceID)
		return nil
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	docs, err := w.retriever.Retrieve(ctx, query, w.k, w.rerankTopN)
	if err != nil {
		if errors.Is(err, rag.ErrContractViolation) {
			return fmt.Errorf("retrieve documents: %w", err)
		}
		metrics.RecordDegraded("retrieval", "workflow")
		w.logger.Error("Retrieval failed, continuing without documents",
			"trace_id", state.TraceID,
			"error", err,
		)
		return nil
	}

	if docs != nil {
		state.RetrievedDocs = docs
	}
	w.logger.Info("Retrieved documents", "trace_id", state.TraceID, "query", query, "count", len(state.RetrievedDocs))
	return nil
}

func (w *Workflow) skipRetrieval(_ context.Context, state *domainTriage.PipelineState) error {
	w.logger.Info("Emergency path, skipping retrieval", "trace_id", state.TraceID, "triage", state.Triage)
	return nil
}

func (w *Workflow) assembleContext(_ context.Context, state *domainTriage.PipelineState) error {
	state.ContextText, state.Citations = AssembleContext(state.RetrievedDocs)
	return nil
}

func (w *Workflow) answer(ctx context.Context, state *domainTriage.PipelineState) error {
	state.Answer = w.generator.Answer(ctx, state)
	return nil
}

func (w *Workflow) logTrace(ctx context.Context, state *domainTriage.PipelineState) error {
	w.trace.Log(ctx, state)
	return nil
}
