// Package llm 提供 OpenAI 兼容的文本生成客户端
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
)

// 生成模式
const (
	ModeCompletions = "completions"
	ModeChat        = "chat"
)

// ErrNoChoices 服务返回空结果
var ErrNoChoices = errors.New("generation API returned no choices")

// Client 文本生成客户端
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	mode        string
	temperature float64
	topP        float64
	maxTokens   int
	stop        []string
	httpClient  *http.Client
	logger      *slog.Logger
}

var _ triage.TextGenerator = (*Client)(nil)

// CompletionRequest /v1/completions 请求
type CompletionRequest struct {
	Model       string   `json:"model,omitempty"`
	Prompt      string   `json:"prompt"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	MaxTokens   int      `json:"max_tokens"`
	Stop        []string `json:"stop,omitempty"`
	Stream      bool     `json:"stream"`
}

// CompletionResponse /v1/completions 响应
type CompletionResponse struct {
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// ChatRequest /v1/chat/completions 请求
type ChatRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

// Message Chat 消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse /v1/chat/completions 响应
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewClient 创建生成客户端
func NewClient(cfg *config.GenerationConfig) *Client {
	mode := cfg.Mode
	if mode != ModeChat {
		mode = ModeCompletions
	}
	return &Client{
		baseURL:     strings.TrimSuffix(strings.TrimSuffix(cfg.BaseURL, "/"), "/v1"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		mode:        mode,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
		stop:        cfg.Stop,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      log.NewModuleLogger("llm", "client"),
	}
}

// Generate 生成回答，不做重试
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var (
		text string
		err  error
	)
	if c.mode == ModeChat {
		text, err = c.chat(ctx, systemPrompt, userPrompt)
	} else {
		text, err = c.complete(ctx, systemPrompt, userPrompt)
	}
	if err != nil {
		return "", err
	}

	c.logger.Debug("Generated answer",
		"mode", c.mode,
		"model", c.model,
		"answer_length", len(text),
	)
	return text, nil
}

// complete 基座模型无对话模板，手工拼接提示词
func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := CompletionRequest{
		Model:       c.model,
		Prompt:      BuildCompletionPrompt(systemPrompt, userPrompt),
		Temperature: c.temperature,
		TopP:        c.topP,
		MaxTokens:   c.maxTokens,
		Stop:        c.stop,
	}

	var resp CompletionResponse
	if err := c.post(ctx, "/v1/completions", reqBody, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Text), nil
}

func (c *Client) chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.temperature,
		TopP:        c.topP,
		MaxTokens:   c.maxTokens,
	}

	var resp ChatResponse
	if err := c.post(ctx, "/v1/chat/completions", reqBody, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("generation API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, readResponseBody(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode generation response: %w", err)
	}
	return nil
}

// HealthCheck 探测生成服务 /health
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

// BuildCompletionPrompt 拼接 completions 模式的完整提示词
func BuildCompletionPrompt(systemPrompt, userPrompt string) string {
	return systemPrompt + "\n\n" + userPrompt + "\n\nAnswer:"
}

// readResponseBody 读取错误响应体，最多 1KB
func readResponseBody(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return ""
	}
	return string(body)
}
