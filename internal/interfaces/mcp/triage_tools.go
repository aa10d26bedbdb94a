package mcp

import (
	"context"
	"fmt"
	"strings"

	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HistoryMessage 历史消息
type HistoryMessage struct {
	Role    string `json:"role" jsonschema:"Message role: user, assistant or system"`
	Content string `json:"content" jsonschema:"Message text"`
}

// AssessSymptomsInput 分诊工具输入
type AssessSymptomsInput struct {
	Message string           `json:"message" jsonschema:"The patient's latest message (required)"`
	History []HistoryMessage `json:"history,omitempty" jsonschema:"Earlier conversation turns, oldest first"`
}

// CitationOutput 引用
type CitationOutput struct {
	ID     int    `json:"id" jsonschema:"Citation number used in the answer, e.g. [1]"`
	Title  string `json:"title" jsonschema:"Document title"`
	URL    string `json:"url" jsonschema:"Document URL"`
	Source string `json:"source" jsonschema:"Publishing source"`
}

// AssessSymptomsOutput 分诊工具输出
type AssessSymptomsOutput struct {
	Answer    string           `json:"answer" jsonschema:"Answer text"`
	Triage    string           `json:"triage" jsonschema:"Triage level: primary-care, ER or 911"`
	RedFlags  []string         `json:"red_flags" jsonschema:"Matched red-flag messages"`
	Citations []CitationOutput `json:"citations" jsonschema:"Sources cited in the answer"`
	TraceID   string           `json:"trace_id" jsonschema:"Trace id for this run"`
}

var validRoles = map[string]domainTriage.Role{
	"user":      domainTriage.RoleUser,
	"assistant": domainTriage.RoleAssistant,
	"system":    domainTriage.RoleSystem,
}

// assessSymptomsTool 运行分诊流水线
func (s *MCPServer) assessSymptomsTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input AssessSymptomsInput,
) (*mcp.CallToolResult, AssessSymptomsOutput, error) {
	output := AssessSymptomsOutput{
		RedFlags:  []string{},
		Citations: []CitationOutput{},
	}

	if strings.TrimSpace(input.Message) == "" {
		return nil, output, fmt.Errorf("message is required")
	}

	messages := make([]domainTriage.Message, 0, len(input.History)+1)
	for i, h := range input.History {
		role, ok := validRoles[strings.ToLower(h.Role)]
		if !ok {
			return nil, output, fmt.Errorf("history[%d]: invalid role %q", i, h.Role)
		}
		messages = append(messages, domainTriage.Message{Role: role, Content: h.Content})
	}
	messages = append(messages, domainTriage.Message{Role: domainTriage.RoleUser, Content: input.Message})

	result, state, err := s.workflow.Run(ctx, messages)
	if err != nil {
		traceID := ""
		if state != nil {
			traceID = state.TraceID
		}
		s.logger.Error("assess_symptoms failed", append(log.LogCtxFromContext(ctx), "trace_id", traceID, "error", err)...)
		return nil, output, fmt.Errorf("triage failed: %w", err)
	}

	output.Answer = result.Answer
	output.Triage = string(result.Triage)
	output.TraceID = result.TraceID
	if result.RedFlags != nil {
		output.RedFlags = result.RedFlags
	}
	for _, c := range result.Citations {
		output.Citations = append(output.Citations, CitationOutput{ID: c.ID, Title: c.Title, URL: c.URL, Source: c.Source})
	}
	return nil, output, nil
}
