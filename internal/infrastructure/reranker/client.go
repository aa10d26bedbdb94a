// Package reranker 提供交叉编码器打分服务客户端（text-embeddings-inference /rerank 协议）
package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
)

// Client 交叉编码器客户端
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ rag.CrossEncoder = (*Client)(nil)

// RerankRequest 打分请求
type RerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	RawScores bool     `json:"raw_scores"`
}

// RerankResult 单条打分结果，Index 指向请求中的 texts 下标
type RerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// NewClient 创建客户端
func NewClient(cfg *config.RerankerConfig) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.NewModuleLogger("reranker", "client"),
	}
}

// ModelName 模型名
func (c *Client) ModelName() string {
	return c.model
}

// Score 对每个 (query, text) 打分，返回值与 texts 顺序一致
func (c *Client) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	jsonData, err := json.Marshal(RerankRequest{Query: query, Texts: texts, RawScores: true})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rerank API returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []RerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}
	if len(results) != len(texts) {
		return nil, fmt.Errorf("expected %d scores, got %d", len(texts), len(results))
	}

	scores := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(texts) || seen[r.Index] {
			return nil, fmt.Errorf("invalid rerank index %d", r.Index)
		}
		seen[r.Index] = true
		scores[r.Index] = r.Score
	}

	c.logger.Debug("Scored candidates", "model", c.model, "count", len(scores))
	return scores, nil
}

// HealthCheck 探测 /health
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
