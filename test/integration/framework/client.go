//go:build integration
// +build integration

// APIClient 基于 resty 封装的 HTTP 客户端，直接复用 handler 的请求/响应结构体
package framework

import (
	"time"

	"github.com/go-resty/resty/v2"
	appRAG "github.com/ontariodoctor/backend/internal/application/rag"
	"github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/interfaces/http/handler"
	"github.com/ontariodoctor/backend/internal/interfaces/http/response"
)

// APIClient 测试用 HTTP 客户端
type APIClient struct {
	client  *resty.Client
	baseURL string
}

// NewAPIClient 创建测试用 HTTP 客户端
func NewAPIClient(baseURL string) *APIClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &APIClient{
		client:  client,
		baseURL: baseURL,
	}
}

// Result 一次调用的状态码与解析后的成功/错误响应
type Result[T any] struct {
	Status int
	Data   T
	Error  response.ErrorResponse
}

// call resty 的 SetResult 仅在 2xx 时解析，SetError 在 4xx/5xx 时解析
func call[T any](r *resty.Request, method, path string) (*Result[T], error) {
	var result Result[T]
	resp, err := r.SetResult(&result.Data).SetError(&result.Error).Execute(method, path)
	if err != nil {
		return nil, err
	}
	result.Status = resp.StatusCode()
	return &result, nil
}

// Health 健康检查
func (c *APIClient) Health() (*Result[handler.HealthResponse], error) {
	return call[handler.HealthResponse](c.client.R(), resty.MethodGet, "/health")
}

// Chat 调用分诊对话
func (c *APIClient) Chat(messages ...handler.MessageDTO) (*Result[handler.ChatResponse], error) {
	return call[handler.ChatResponse](
		c.client.R().SetBody(handler.ChatRequest{Messages: messages}),
		resty.MethodPost, "/api/v1/chat",
	)
}

// Ask 单条用户消息的快捷方式
func (c *APIClient) Ask(text string) (*Result[handler.ChatResponse], error) {
	return c.Chat(handler.MessageDTO{Role: "user", Content: text})
}

// Retrieve 调用检索接口
func (c *APIClient) Retrieve(req handler.RetrieveRequest) (*Result[appRAG.SearchResult], error) {
	return call[appRAG.SearchResult](c.client.R().SetBody(req), resty.MethodPost, "/api/v1/retrieve")
}

// Ingest 调用入库接口
func (c *APIClient) Ingest(docs ...handler.DocumentDTO) (*Result[rag.IngestResult], error) {
	if docs == nil {
		docs = []handler.DocumentDTO{}
	}
	return call[rag.IngestResult](
		c.client.R().SetBody(handler.IngestRequest{Documents: docs}),
		resty.MethodPost, "/api/v1/ingest",
	)
}

// Metrics 拉取 Prometheus 指标文本
func (c *APIClient) Metrics() (string, error) {
	resp, err := c.client.R().SetHeader("Accept", "text/plain").Get("/metrics")
	if err != nil {
		return "", err
	}
	return resp.String(), nil
}
