// Package mocks 提供 rag 端口的 testify mock
package mocks

import (
	"context"

	"github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/stretchr/testify/mock"
)

// MockEmbedder rag.Embedder 的 mock
type MockEmbedder struct {
	mock.Mock
}

// NewMockEmbedder 创建 mock，测试结束时校验期望
func NewMockEmbedder(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEmbedder {
	m := &MockEmbedder{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EmbedQuery mock
func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	var vec []float32
	if v := args.Get(0); v != nil {
		vec = v.([]float32)
	}
	return vec, args.Error(1)
}

// EmbedTexts mock
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	var vecs [][]float32
	switch v := args.Get(0).(type) {
	case func(context.Context, []string) [][]float32:
		vecs = v(ctx, texts)
	case [][]float32:
		vecs = v
	}
	return vecs, args.Error(1)
}

// MockVectorIndex rag.VectorIndex 的 mock
type MockVectorIndex struct {
	mock.Mock
}

// NewMockVectorIndex 创建 mock，测试结束时校验期望
func NewMockVectorIndex(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockVectorIndex {
	m := &MockVectorIndex{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Search mock
func (m *MockVectorIndex) Search(ctx context.Context, vector []float32, limit int, partition rag.Partition) ([]rag.RetrievedDocument, error) {
	args := m.Called(ctx, vector, limit, partition)
	var docs []rag.RetrievedDocument
	if v := args.Get(0); v != nil {
		docs = v.([]rag.RetrievedDocument)
	}
	return docs, args.Error(1)
}

// Upsert mock
func (m *MockVectorIndex) Upsert(ctx context.Context, chunks []rag.Chunk, vectors [][]float32) error {
	args := m.Called(ctx, chunks, vectors)
	return args.Error(0)
}

// MockCrossEncoder rag.CrossEncoder 的 mock
type MockCrossEncoder struct {
	mock.Mock
}

// NewMockCrossEncoder 创建 mock，测试结束时校验期望
func NewMockCrossEncoder(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCrossEncoder {
	m := &MockCrossEncoder{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Score mock
func (m *MockCrossEncoder) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	args := m.Called(ctx, query, texts)
	var scores []float64
	if v := args.Get(0); v != nil {
		scores = v.([]float64)
	}
	return scores, args.Error(1)
}

// ModelName 固定返回测试模型名
func (m *MockCrossEncoder) ModelName() string {
	return "mock-cross-encoder"
}

// MockCorpusRepository rag.CorpusRepository 的 mock
type MockCorpusRepository struct {
	mock.Mock
}

// NewMockCorpusRepository 创建 mock，测试结束时校验期望
func NewMockCorpusRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCorpusRepository {
	m := &MockCorpusRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// SaveChunks mock
func (m *MockCorpusRepository) SaveChunks(ctx context.Context, chunks []rag.Chunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

// ListChunks mock
func (m *MockCorpusRepository) ListChunks(ctx context.Context) ([]rag.Chunk, error) {
	args := m.Called(ctx)
	var chunks []rag.Chunk
	if v := args.Get(0); v != nil {
		chunks = v.([]rag.Chunk)
	}
	return chunks, args.Error(1)
}

// CountChunks mock
func (m *MockCorpusRepository) CountChunks(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

var (
	_ rag.Embedder         = (*MockEmbedder)(nil)
	_ rag.VectorIndex      = (*MockVectorIndex)(nil)
	_ rag.CrossEncoder     = (*MockCrossEncoder)(nil)
	_ rag.CorpusRepository = (*MockCorpusRepository)(nil)
)
