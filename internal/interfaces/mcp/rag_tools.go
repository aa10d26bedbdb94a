package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultSearchK    = 8
	maxSearchK        = 50
	defaultRerankTopN = 3
	maxRerankTopN     = 20
	snippetLength     = 300
)

// SearchDocumentsInput 文档检索工具输入
type SearchDocumentsInput struct {
	Query      string `json:"query" jsonschema:"Search query in natural language (required)"`
	K          int    `json:"k,omitempty" jsonschema:"Candidates per retrieval arm, defaults to 8, max 50"`
	RerankTopN int    `json:"rerank_top_n,omitempty" jsonschema:"Results kept after reranking, defaults to 3, max 20"`
}

// SearchDocumentsOutput 文档检索工具输出
type SearchDocumentsOutput struct {
	Results    []*DocumentSearchResult `json:"results" jsonschema:"Ranked passages"`
	TotalCount int                     `json:"total_count" jsonschema:"Number of passages returned"`
	LatencyMS  int64                   `json:"latency_ms" jsonschema:"Search latency in milliseconds"`
}

// DocumentSearchResult 检索结果（精简版）
type DocumentSearchResult struct {
	Rank    int     `json:"rank" jsonschema:"1-based rank after reranking"`
	DocID   string  `json:"doc_id" jsonschema:"Chunk identifier"`
	Title   string  `json:"title" jsonschema:"Document title"`
	URL     string  `json:"url" jsonschema:"Document URL"`
	Source  string  `json:"source" jsonschema:"Publishing source"`
	Snippet string  `json:"snippet" jsonschema:"Leading part of the passage text"`
	Score   float64 `json:"score" jsonschema:"Score from the last ranking stage"`
}

// searchHealthDocumentsTool 检索健康文档
func (s *MCPServer) searchHealthDocumentsTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchDocumentsInput,
) (*mcp.CallToolResult, SearchDocumentsOutput, error) {
	output := SearchDocumentsOutput{
		Results: []*DocumentSearchResult{},
	}

	if strings.TrimSpace(input.Query) == "" {
		return nil, output, fmt.Errorf("query is required")
	}

	k := clampInt(input.K, defaultSearchK, maxSearchK)
	topN := clampInt(input.RerankTopN, defaultRerankTopN, maxRerankTopN)

	result, err := s.search.Search(ctx, input.Query, k, topN)
	if err != nil {
		return nil, output, fmt.Errorf("search failed: %w", err)
	}

	for i, hit := range result.Hits {
		output.Results = append(output.Results, &DocumentSearchResult{
			Rank:    i + 1,
			DocID:   hit.DocID,
			Title:   hit.Title,
			URL:     hit.URL,
			Source:  hit.Source,
			Snippet: truncateSnippet(hit.Text, snippetLength),
			Score:   hit.Score,
		})
	}
	output.TotalCount = len(output.Results)
	output.LatencyMS = result.LatencyMS
	return nil, output, nil
}

// clampInt 非正数取默认值，超过上限取上限
func clampInt(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// truncateSnippet 截断到指定长度，尽量在单词边界处
func truncateSnippet(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	truncated := runes[:maxLen]
	for i := len(truncated) - 1; i >= maxLen-20 && i >= 0; i-- {
		if truncated[i] == ' ' {
			return string(truncated[:i]) + "..."
		}
	}
	return string(truncated) + "..."
}
