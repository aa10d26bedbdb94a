// Package mocks 提供 triage 端口的 testify mock
package mocks

import (
	"context"

	"github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/stretchr/testify/mock"
)

// MockDocumentRetriever triage.DocumentRetriever 的 mock
type MockDocumentRetriever struct {
	mock.Mock
}

// NewMockDocumentRetriever 创建 mock，测试结束时校验期望
func NewMockDocumentRetriever(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockDocumentRetriever {
	m := &MockDocumentRetriever{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Retrieve mock
func (m *MockDocumentRetriever) Retrieve(ctx context.Context, query string, k, rerankTopN int) ([]rag.RetrievedDocument, error) {
	args := m.Called(ctx, query, k, rerankTopN)
	var docs []rag.RetrievedDocument
	if v := args.Get(0); v != nil {
		docs = v.([]rag.RetrievedDocument)
	}
	return docs, args.Error(1)
}

// MockTextGenerator triage.TextGenerator 的 mock
type MockTextGenerator struct {
	mock.Mock
}

// NewMockTextGenerator 创建 mock，测试结束时校验期望
func NewMockTextGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTextGenerator {
	m := &MockTextGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Generate mock
func (m *MockTextGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

// MockTraceRepository triage.TraceRepository 的 mock
type MockTraceRepository struct {
	mock.Mock
}

// NewMockTraceRepository 创建 mock，测试结束时校验期望
func NewMockTraceRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTraceRepository {
	m := &MockTraceRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// SaveTrace mock
func (m *MockTraceRepository) SaveTrace(ctx context.Context, record *triage.TraceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// GetTrace mock
func (m *MockTraceRepository) GetTrace(ctx context.Context, traceID string) (*triage.TraceRecord, error) {
	args := m.Called(ctx, traceID)
	var rec *triage.TraceRecord
	if v := args.Get(0); v != nil {
		rec = v.(*triage.TraceRecord)
	}
	return rec, args.Error(1)
}

var (
	_ triage.DocumentRetriever = (*MockDocumentRetriever)(nil)
	_ triage.TextGenerator     = (*MockTextGenerator)(nil)
	_ triage.TraceRepository   = (*MockTraceRepository)(nil)
)
