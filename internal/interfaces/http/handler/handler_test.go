package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	appRAG "github.com/ontariodoctor/backend/internal/application/rag"
	appTriage "github.com/ontariodoctor/backend/internal/application/triage"
	"github.com/ontariodoctor/backend/internal/domain/rag"
	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockChatRunner struct{ mock.Mock }

func (m *mockChatRunner) Run(ctx context.Context, messages []domainTriage.Message) (*appTriage.ChatResult, *domainTriage.PipelineState, error) {
	args := m.Called(ctx, messages)
	result, _ := args.Get(0).(*appTriage.ChatResult)
	state, _ := args.Get(1).(*domainTriage.PipelineState)
	return result, state, args.Error(2)
}

type mockSearcher struct{ mock.Mock }

func (m *mockSearcher) Search(ctx context.Context, query string, k, rerankTopN int) (*appRAG.SearchResult, error) {
	args := m.Called(ctx, query, k, rerankTopN)
	result, _ := args.Get(0).(*appRAG.SearchResult)
	return result, args.Error(1)
}

type mockIngester struct{ mock.Mock }

func (m *mockIngester) Ingest(ctx context.Context, docs []rag.SourceDocument, origin string) (*rag.IngestResult, error) {
	args := m.Called(ctx, docs, origin)
	result, _ := args.Get(0).(*rag.IngestResult)
	return result, args.Error(1)
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func setupChatRouter(runner ChatRunner) *gin.Engine {
	router := gin.New()
	h := &ChatHandler{workflow: runner, logger: log.NewModuleLogger("http", "chat")}
	router.POST("/api/v1/chat", h.Chat)
	return router
}

func TestChatHandler_Chat(t *testing.T) {
	t.Run("成功返回分诊结果", func(t *testing.T) {
		runner := &mockChatRunner{}
		runner.On("Run", mock.Anything, []domainTriage.Message{{Role: domainTriage.RoleUser, Content: "chest pain"}}).
			Return(&appTriage.ChatResult{
				Answer:    "Call 911",
				Citations: []domainTriage.Citation{},
				Triage:    domainTriage.LevelEmergency,
				RedFlags:  []string{"Possible heart attack"},
				LatencyMS: 12,
				TraceID:   "trace-1",
			}, &domainTriage.PipelineState{TraceID: "trace-1"}, nil)

		w := postJSON(setupChatRouter(runner), "/api/v1/chat", `{"messages":[{"role":"user","content":"chest pain"}]}`)
		require.Equal(t, http.StatusOK, w.Code)

		var body ChatResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, domainTriage.LevelEmergency, body.Triage)
		assert.Equal(t, "trace-1", body.TraceID)
		assert.Equal(t, []string{"Possible heart attack"}, body.RedFlags)
		runner.AssertExpectations(t)
	})

	badRequests := []struct {
		name string
		body string
	}{
		{"空消息列表", `{"messages":[]}`},
		{"缺少 messages", `{}`},
		{"非法角色", `{"messages":[{"role":"doctor","content":"hi"}]}`},
		{"非法 JSON", `{"messages":`},
	}
	for _, tt := range badRequests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockChatRunner{}
			w := postJSON(setupChatRouter(runner), "/api/v1/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		})
	}

	t.Run("契约违反返回 500", func(t *testing.T) {
		runner := &mockChatRunner{}
		runner.On("Run", mock.Anything, mock.Anything).
			Return(nil, &domainTriage.PipelineState{TraceID: "t"}, fmt.Errorf("rerank: %w", rag.ErrContractViolation))

		w := postJSON(setupChatRouter(runner), "/api/v1/chat", `{"messages":[{"role":"user","content":"x"}]}`)
		require.Equal(t, http.StatusInternalServerError, w.Code)

		var body response.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, response.CodeContractViolation, body.Code)
		assert.Contains(t, body.Detail, "contract")
	})
}

func setupRetrieveRouter(searcher Searcher) *gin.Engine {
	router := gin.New()
	h := &RetrieveHandler{search: searcher, logger: log.NewModuleLogger("http", "retrieve")}
	router.POST("/api/v1/retrieve", h.Retrieve)
	return router
}

func TestRetrieveHandler_Retrieve(t *testing.T) {
	t.Run("省略参数使用默认值", func(t *testing.T) {
		searcher := &mockSearcher{}
		searcher.On("Search", mock.Anything, "fever", DefaultK, DefaultRerankTopN).
			Return(&appRAG.SearchResult{Hits: []rag.RetrievedDocument{{DocID: "a::0"}}, LatencyMS: 3}, nil)

		w := postJSON(setupRetrieveRouter(searcher), "/api/v1/retrieve", `{"query":"fever"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var body appRAG.SearchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Hits, 1)
		assert.Equal(t, "a::0", body.Hits[0].DocID)
		searcher.AssertExpectations(t)
	})

	t.Run("显式参数透传", func(t *testing.T) {
		searcher := &mockSearcher{}
		searcher.On("Search", mock.Anything, "rash", 20, 5).
			Return(&appRAG.SearchResult{Hits: []rag.RetrievedDocument{}}, nil)

		w := postJSON(setupRetrieveRouter(searcher), "/api/v1/retrieve", `{"query":"rash","k":20,"rerank_top_n":5}`)
		assert.Equal(t, http.StatusOK, w.Code)
		searcher.AssertExpectations(t)
	})

	outOfRange := []struct {
		name string
		body string
	}{
		{"k 为 0", `{"query":"q","k":0}`},
		{"k 超过 50", `{"query":"q","k":51}`},
		{"rerank_top_n 超过 20", `{"query":"q","rerank_top_n":21}`},
	}
	for _, tt := range outOfRange {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &mockSearcher{}
			w := postJSON(setupRetrieveRouter(searcher), "/api/v1/retrieve", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("检索错误返回 500", func(t *testing.T) {
		searcher := &mockSearcher{}
		searcher.On("Search", mock.Anything, "q", DefaultK, DefaultRerankTopN).Return(nil, errors.New("boom"))

		w := postJSON(setupRetrieveRouter(searcher), "/api/v1/retrieve", `{"query":"q"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func setupIngestRouter(ingester Ingester) *gin.Engine {
	router := gin.New()
	h := &IngestHandler{ingester: ingester, logger: log.NewModuleLogger("http", "ingest")}
	router.POST("/api/v1/ingest", h.Ingest)
	return router
}

func TestIngestHandler_Ingest(t *testing.T) {
	t.Run("成功入库", func(t *testing.T) {
		ingester := &mockIngester{}
		expected := []rag.SourceDocument{{Text: "body", Title: "Fever", URL: "https://x", Source: "ontario.ca"}}
		ingester.On("Ingest", mock.Anything, expected, appRAG.OriginHTTP).
			Return(&rag.IngestResult{IngestedCount: 1, ChunkCount: 2}, nil)

		w := postJSON(setupIngestRouter(ingester), "/api/v1/ingest",
			`{"documents":[{"text":"body","title":"Fever","url":"https://x","source":"ontario.ca"}]}`)
		require.Equal(t, http.StatusOK, w.Code)

		var body rag.IngestResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, rag.IngestResult{IngestedCount: 1, ChunkCount: 2}, body)
		ingester.AssertExpectations(t)
	})

	t.Run("空批次返回 400", func(t *testing.T) {
		ingester := &mockIngester{}
		ingester.On("Ingest", mock.Anything, []rag.SourceDocument{}, appRAG.OriginHTTP).Return(nil, rag.ErrNoDocuments)

		w := postJSON(setupIngestRouter(ingester), "/api/v1/ingest", `{"documents":[]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body response.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, response.CodeNoDocuments, body.Code)
	})

	t.Run("缺少必填字段返回 400", func(t *testing.T) {
		ingester := &mockIngester{}
		w := postJSON(setupIngestRouter(ingester), "/api/v1/ingest", `{"documents":[{"text":"body"}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		ingester.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("下游失败返回 500", func(t *testing.T) {
		ingester := &mockIngester{}
		ingester.On("Ingest", mock.Anything, mock.Anything, appRAG.OriginHTTP).Return(nil, errors.New("qdrant down"))

		w := postJSON(setupIngestRouter(ingester), "/api/v1/ingest",
			`{"documents":[{"text":"body","title":"T","source":"s"}]}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHealthHandler_Health(t *testing.T) {
	ok := HealthCheckFunc(func(context.Context) error { return nil })
	fail := HealthCheckFunc(func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name   string
		probes []HealthProbe
		status string
	}{
		{"全部健康", []HealthProbe{{"qdrant", ok}, {"llm", ok}}, StatusHealthy},
		{"部分失败", []HealthProbe{{"qdrant", ok}, {"llm", fail}}, StatusDegraded},
		{"全部失败", []HealthProbe{{"qdrant", fail}, {"llm", fail}}, StatusUnhealthy},
		{"空词法索引", []HealthProbe{{"qdrant", ok}, {"lexical", LexicalProbe(appRAG.NewLexicalIndex())}}, StatusDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", newHealthHandler(tt.probes...).Health)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
			require.Len(t, body.Services, len(tt.probes))
			for i, probe := range tt.probes {
				assert.Equal(t, probe.Name, body.Services[i].Name)
			}
		})
	}
}
