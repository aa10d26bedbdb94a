package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServiceStatusInput 服务状态工具输入（空输入）
type ServiceStatusInput struct{}

// ServiceStatusOutput 服务状态工具输出
type ServiceStatusOutput struct {
	Status        string `json:"status" jsonschema:"运行状态"`
	Service       string `json:"service" jsonschema:"服务名"`
	Version       string `json:"version" jsonschema:"版本号"`
	LexicalChunks int    `json:"lexical_chunks" jsonschema:"词法索引中的片段数"`
}

// getServiceStatusTool 获取服务状态
func (s *MCPServer) getServiceStatusTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ServiceStatusInput,
) (*mcp.CallToolResult, ServiceStatusOutput, error) {
	output := ServiceStatusOutput{
		Status:  "running",
		Service: s.name,
		Version: s.version,
	}
	if s.lexical != nil {
		output.LexicalChunks = s.lexical.Size()
	}
	return nil, output, nil
}
