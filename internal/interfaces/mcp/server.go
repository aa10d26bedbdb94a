package mcp

import (
	"context"
	"log/slog"
	"net/http"

	appRAG "github.com/ontariodoctor/backend/internal/application/rag"
	appTriage "github.com/ontariodoctor/backend/internal/application/triage"
	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// triageRunner 分诊流水线
type triageRunner interface {
	Run(ctx context.Context, messages []domainTriage.Message) (*appTriage.ChatResult, *domainTriage.PipelineState, error)
}

// documentSearcher 文档检索
type documentSearcher interface {
	Search(ctx context.Context, query string, k, rerankTopN int) (*appRAG.SearchResult, error)
}

// snapshotSizer 词法快照规模
type snapshotSizer interface {
	Size() int
}

// MCPServer MCP 服务器
type MCPServer struct {
	server   *mcp.Server
	handler  http.Handler
	workflow triageRunner
	search   documentSearcher
	lexical  snapshotSizer
	name     string
	version  string
	logger   *slog.Logger
}

// NewServer 创建 MCP 服务器
func NewServer(
	workflow *appTriage.Workflow,
	search *appRAG.SearchService,
	lexical *appRAG.LexicalIndex,
	telemetry *config.TelemetryConfig,
) *MCPServer {
	return newServer(workflow, search, lexical, telemetry.ServiceName, telemetry.ServiceVersion)
}

func newServer(workflow triageRunner, search documentSearcher, lexical snapshotSizer, name, version string) *MCPServer {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    name,
			Version: version,
		},
		nil,
	)

	mcpServer := &MCPServer{
		server:   server,
		workflow: workflow,
		search:   search,
		lexical:  lexical,
		name:     name,
		version:  version,
		logger:   log.NewModuleLogger("mcp", "server"),
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_service_status",
		Description: "Get the status of the Ontario triage service, including version and the number of chunks in the lexical index. No parameters required.",
	}, mcpServer.getServiceStatusTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "assess_symptoms",
		Description: `Run the Ontario medical triage pipeline on a patient description.

Red-flag symptoms (e.g. chest pain with shortness of breath, fever in an infant) short-circuit to an emergency answer without retrieval.
Otherwise the answer is grounded in retrieved Ontario health documents with numbered citations.

Parameters:
- message (string, required): The patient's latest message, e.g. "I am 34F with a cough for 3 days, fever 38.5C"
- history (array, optional): Earlier turns as objects with role (user/assistant/system) and content

Returns: answer text, triage level (primary-care/ER/911), red flags, citations, and trace id.

This tool gives general information only and is not a diagnosis.`,
	}, mcpServer.assessSymptomsTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "search_health_documents",
		Description: `Search the ingested Ontario health documents with hybrid (vector + BM25) retrieval and cross-encoder reranking.

Parameters:
- query (string, required): Natural language search query
- k (int, optional): Candidates per retrieval arm (1-50, default: 8)
- rerank_top_n (int, optional): Results kept after reranking (1-20, default: 3)

Returns: ranked passages with title, url, source, and a text snippet.`,
	}, mcpServer.searchHealthDocumentsTool)

	mcpServer.handler = mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			return server
		},
		nil,
	)
	return mcpServer
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}
