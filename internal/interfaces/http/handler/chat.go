package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	appTriage "github.com/ontariodoctor/backend/internal/application/triage"
	"github.com/ontariodoctor/backend/internal/domain/rag"
	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// ChatRunner 执行一次分诊流水线
type ChatRunner interface {
	Run(ctx context.Context, messages []domainTriage.Message) (*appTriage.ChatResult, *domainTriage.PipelineState, error)
}

// MessageDTO 对话消息
type MessageDTO struct {
	Role    string `json:"role" binding:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// ChatRequest 对话请求
type ChatRequest struct {
	Messages []MessageDTO `json:"messages" binding:"required,min=1,dive"`
}

// ChatResponse 对话响应
type ChatResponse struct {
	Answer    string                  `json:"answer"`
	Citations []domainTriage.Citation `json:"citations"`
	Triage    domainTriage.Level      `json:"triage"`
	RedFlags  []string                `json:"red_flags"`
	LatencyMS int64                   `json:"latency_ms"`
	TraceID   string                  `json:"trace_id"`
}

// ChatHandler 对话处理器
type ChatHandler struct {
	workflow ChatRunner
	logger   *slog.Logger
}

// NewChatHandler 创建对话处理器
func NewChatHandler(workflow *appTriage.Workflow) *ChatHandler {
	return &ChatHandler{
		workflow: workflow,
		logger:   log.NewModuleLogger("http", "chat"),
	}
}

// Chat 运行分诊流水线
// @Summary 分诊对话
// @Tags 分诊
// @Accept json
// @Produce json
// @Param body body ChatRequest true "对话消息"
// @Success 200 {object} ChatResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeInvalidParams, "invalid chat request", err.Error())
		return
	}

	messages := make([]domainTriage.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = domainTriage.Message{Role: domainTriage.Role(m.Role), Content: m.Content}
	}

	ctx := c.Request.Context()
	result, state, err := h.workflow.Run(ctx, messages)
	if err != nil {
		traceID := ""
		if state != nil {
			traceID = state.TraceID
		}
		h.logger.Error("Chat workflow failed",
			append(log.LogCtxFromContext(ctx), "trace_id", traceID, "error", err)...,
		)
		if errors.Is(err, rag.ErrContractViolation) {
			response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeContractViolation, "contract violation", err.Error())
			return
		}
		response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeInternal, "workflow failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Answer:    result.Answer,
		Citations: result.Citations,
		Triage:    result.Triage,
		RedFlags:  result.RedFlags,
		LatencyMS: result.LatencyMS,
		TraceID:   result.TraceID,
	})
}
