package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	appRAG "github.com/ontariodoctor/backend/internal/application/rag"
	appTriage "github.com/ontariodoctor/backend/internal/application/triage"
	"github.com/ontariodoctor/backend/internal/domain/rag"
	domainTriage "github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	got    []domainTriage.Message
	result *appTriage.ChatResult
	err    error
}

func (s *stubRunner) Run(_ context.Context, messages []domainTriage.Message) (*appTriage.ChatResult, *domainTriage.PipelineState, error) {
	s.got = messages
	return s.result, &domainTriage.PipelineState{TraceID: "trace"}, s.err
}

type stubSearcher struct {
	query   string
	k, topN int
	result  *appRAG.SearchResult
	err     error
}

func (s *stubSearcher) Search(_ context.Context, query string, k, topN int) (*appRAG.SearchResult, error) {
	s.query, s.k, s.topN = query, k, topN
	return s.result, s.err
}

type fixedSize int

func (f fixedSize) Size() int { return int(f) }

func TestAssessSymptomsTool(t *testing.T) {
	t.Run("历史消息与当前消息按序传入", func(t *testing.T) {
		runner := &stubRunner{result: &appTriage.ChatResult{
			Answer:    "See a doctor [1]",
			Triage:    domainTriage.LevelPrimaryCare,
			Citations: []domainTriage.Citation{{ID: 1, Title: "Cough", URL: "u", Source: "s"}},
			TraceID:   "trace",
		}}
		s := newServer(runner, &stubSearcher{}, fixedSize(0), "svc", "v1")

		_, out, err := s.assessSymptomsTool(context.Background(), nil, AssessSymptomsInput{
			Message: "cough for 3 days",
			History: []HistoryMessage{{Role: "assistant", Content: "How can I help?"}},
		})
		require.NoError(t, err)
		require.Len(t, runner.got, 2)
		assert.Equal(t, domainTriage.RoleAssistant, runner.got[0].Role)
		assert.Equal(t, domainTriage.Message{Role: domainTriage.RoleUser, Content: "cough for 3 days"}, runner.got[1])
		assert.Equal(t, "primary-care", out.Triage)
		assert.Equal(t, []string{}, out.RedFlags)
		assert.Equal(t, []CitationOutput{{ID: 1, Title: "Cough", URL: "u", Source: "s"}}, out.Citations)
	})

	t.Run("空消息报错", func(t *testing.T) {
		s := newServer(&stubRunner{}, &stubSearcher{}, fixedSize(0), "svc", "v1")
		_, _, err := s.assessSymptomsTool(context.Background(), nil, AssessSymptomsInput{Message: "  "})
		assert.Error(t, err)
	})

	t.Run("非法角色报错", func(t *testing.T) {
		runner := &stubRunner{}
		s := newServer(runner, &stubSearcher{}, fixedSize(0), "svc", "v1")
		_, _, err := s.assessSymptomsTool(context.Background(), nil, AssessSymptomsInput{
			Message: "hi",
			History: []HistoryMessage{{Role: "doctor", Content: "x"}},
		})
		assert.Error(t, err)
		assert.Nil(t, runner.got)
	})

	t.Run("流水线错误透传", func(t *testing.T) {
		runner := &stubRunner{err: rag.ErrContractViolation}
		s := newServer(runner, &stubSearcher{}, fixedSize(0), "svc", "v1")
		_, _, err := s.assessSymptomsTool(context.Background(), nil, AssessSymptomsInput{Message: "hi"})
		assert.ErrorIs(t, err, rag.ErrContractViolation)
	})
}

func TestSearchHealthDocumentsTool(t *testing.T) {
	tests := []struct {
		name     string
		input    SearchDocumentsInput
		wantK    int
		wantTopN int
	}{
		{"默认参数", SearchDocumentsInput{Query: "fever"}, 8, 3},
		{"超过上限截断", SearchDocumentsInput{Query: "fever", K: 100, RerankTopN: 40}, 50, 20},
		{"显式参数", SearchDocumentsInput{Query: "fever", K: 12, RerankTopN: 5}, 12, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &stubSearcher{result: &appRAG.SearchResult{Hits: []rag.RetrievedDocument{
				{DocID: "a::0", Title: "A", Text: "first"},
				{DocID: "b::1", Title: "B", Text: "second"},
			}, LatencyMS: 7}}
			s := newServer(&stubRunner{}, searcher, fixedSize(0), "svc", "v1")

			_, out, err := s.searchHealthDocumentsTool(context.Background(), nil, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantK, searcher.k)
			assert.Equal(t, tt.wantTopN, searcher.topN)
			require.Equal(t, 2, out.TotalCount)
			assert.Equal(t, 1, out.Results[0].Rank)
			assert.Equal(t, "b::1", out.Results[1].DocID)
			assert.Equal(t, int64(7), out.LatencyMS)
		})
	}

	t.Run("空查询报错", func(t *testing.T) {
		s := newServer(&stubRunner{}, &stubSearcher{}, fixedSize(0), "svc", "v1")
		_, _, err := s.searchHealthDocumentsTool(context.Background(), nil, SearchDocumentsInput{})
		assert.Error(t, err)
	})

	t.Run("检索错误透传", func(t *testing.T) {
		s := newServer(&stubRunner{}, &stubSearcher{err: errors.New("down")}, fixedSize(0), "svc", "v1")
		_, _, err := s.searchHealthDocumentsTool(context.Background(), nil, SearchDocumentsInput{Query: "q"})
		assert.Error(t, err)
	})
}

func TestGetServiceStatusTool(t *testing.T) {
	s := newServer(&stubRunner{}, &stubSearcher{}, fixedSize(42), "ontario-triage", "1.0.0")
	_, out, err := s.getServiceStatusTool(context.Background(), nil, ServiceStatusInput{})
	require.NoError(t, err)
	assert.Equal(t, ServiceStatusOutput{Status: "running", Service: "ontario-triage", Version: "1.0.0", LexicalChunks: 42}, out)
	assert.NotNil(t, s.GetHandler())
}

func TestTruncateSnippet(t *testing.T) {
	assert.Equal(t, "short", truncateSnippet("short", 10))

	long := strings.Repeat("word ", 100)
	got := truncateSnippet(long, 50)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len([]rune(got)), 53)

	assert.Equal(t, "éééé...", truncateSnippet("éééééééé", 4))
}
