package rag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ontariodoctor/backend/internal/domain/events"
	domainRAG "github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/domain/rag/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Subscribe(events.EventType, events.Handler) func() { return func() {} }
func (b *recordingBus) SubscribeMultiple([]events.EventType, events.Handler) func() {
	return func() {}
}
func (b *recordingBus) Publish(event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}
func (b *recordingBus) Close() {}

type recordingLedger struct {
	marked map[string]time.Time
}

func (l *recordingLedger) MarkProcessed(path string, modTime time.Time) {
	l.marked[path] = modTime
}

type ingestFixture struct {
	svc      *IngestService
	embedder *mocks.MockEmbedder
	vectors  *mocks.MockVectorIndex
	corpus   *mocks.MockCorpusRepository
	lexical  *LexicalIndex
	bus      *recordingBus
	ledger   *recordingLedger
}

func newIngestFixture(t *testing.T) *ingestFixture {
	f := &ingestFixture{
		embedder: mocks.NewMockEmbedder(t),
		vectors:  mocks.NewMockVectorIndex(t),
		corpus:   mocks.NewMockCorpusRepository(t),
		lexical:  NewLexicalIndex(),
		bus:      &recordingBus{},
		ledger:   &recordingLedger{marked: map[string]time.Time{}},
	}
	chunker := newChunker(700, 120, domainRAG.DefaultPartition, nil)
	f.svc = NewIngestService(chunker, f.embedder, f.vectors, f.corpus, f.lexical, f.bus, f.ledger)
	return f
}

func (f *ingestFixture) expectSuccess() {
	f.embedder.On("EmbedTexts", mock.Anything, mock.Anything).Return(
		func(_ context.Context, texts []string) [][]float32 {
			out := make([][]float32, len(texts))
			for i := range out {
				out[i] = []float32{float32(i)}
			}
			return out
		}, nil)
	f.vectors.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.corpus.On("SaveChunks", mock.Anything, mock.Anything).Return(nil)
}

var sampleDocs = []domainRAG.SourceDocument{
	{Text: "Fever is a temporary rise in body temperature.", Title: "Fever", URL: "https://example.org/fever", Source: "Health811"},
	{Text: "A sore throat is pain or irritation of the throat.", Title: "Sore throat", URL: "https://example.org/throat", Source: "Health811"},
}

func TestIngestService_Ingest(t *testing.T) {
	ctx := t.Context()

	t.Run("空批次被拒绝", func(t *testing.T) {
		f := newIngestFixture(t)
		_, err := f.svc.Ingest(ctx, nil, OriginHTTP)
		assert.ErrorIs(t, err, domainRAG.ErrNoDocuments)
	})

	t.Run("入库后可被词法检索", func(t *testing.T) {
		f := newIngestFixture(t)
		f.embedder.On("EmbedTexts", mock.Anything, []string{sampleDocs[0].Text, sampleDocs[1].Text}).
			Return([][]float32{{1}, {2}}, nil)
		f.vectors.On("Upsert", mock.Anything, mock.MatchedBy(func(chunks []domainRAG.Chunk) bool {
			return len(chunks) == 2 && chunks[0].DocID == "Health811:Fever#0"
		}), [][]float32{{1}, {2}}).Return(nil)
		f.corpus.On("SaveChunks", mock.Anything, mock.Anything).Return(nil)

		result, err := f.svc.Ingest(ctx, sampleDocs, OriginHTTP)
		require.NoError(t, err)
		assert.Equal(t, 2, result.IngestedCount)
		assert.Equal(t, 2, result.ChunkCount)

		hits := f.lexical.Search("throat", 5, domainRAG.DefaultPartition)
		require.Len(t, hits, 1)
		assert.Equal(t, "Health811:Sore throat#0", hits[0].DocID)

		require.Len(t, f.bus.events, 1)
		completed, ok := f.bus.events[0].(*events.IngestCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, OriginHTTP, completed.Origin)
		assert.Equal(t, 2, completed.SnapshotSize)
	})

	t.Run("重复入库按 doc_id 覆盖", func(t *testing.T) {
		f := newIngestFixture(t)
		f.expectSuccess()

		_, err := f.svc.Ingest(ctx, sampleDocs, OriginHTTP)
		require.NoError(t, err)
		_, err = f.svc.Ingest(ctx, sampleDocs[:1], OriginHTTP)
		require.NoError(t, err)
		assert.Equal(t, 2, f.lexical.Size())
	})

	t.Run("向量化失败时入库失败且快照不变", func(t *testing.T) {
		f := newIngestFixture(t)
		f.embedder.On("EmbedTexts", mock.Anything, mock.Anything).Return(nil, errors.New("embedding down"))

		_, err := f.svc.Ingest(ctx, sampleDocs, OriginHTTP)
		require.Error(t, err)
		assert.Equal(t, 0, f.lexical.Size())
		f.vectors.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.bus.events)
	})

	t.Run("向量写入失败时入库失败", func(t *testing.T) {
		f := newIngestFixture(t)
		f.embedder.On("EmbedTexts", mock.Anything, mock.Anything).Return([][]float32{{1}, {2}}, nil)
		f.vectors.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("qdrant down"))

		_, err := f.svc.Ingest(ctx, sampleDocs, OriginHTTP)
		require.Error(t, err)
		assert.Equal(t, 0, f.lexical.Size())
		f.corpus.AssertNotCalled(t, "SaveChunks", mock.Anything, mock.Anything)
	})

	t.Run("向量数量不符时入库失败", func(t *testing.T) {
		f := newIngestFixture(t)
		f.embedder.On("EmbedTexts", mock.Anything, mock.Anything).Return([][]float32{{1}}, nil)

		_, err := f.svc.Ingest(ctx, sampleDocs, OriginHTTP)
		require.Error(t, err)
	})

	t.Run("全部为空文本时不调用下游", func(t *testing.T) {
		f := newIngestFixture(t)
		result, err := f.svc.Ingest(ctx, []domainRAG.SourceDocument{{Text: " ", Title: "t", Source: "s"}}, OriginCLI)
		require.NoError(t, err)
		assert.Equal(t, 1, result.IngestedCount)
		assert.Equal(t, 0, result.ChunkCount)
	})
}

func TestIngestService_LoadSnapshot(t *testing.T) {
	f := newIngestFixture(t)
	f.corpus.On("ListChunks", mock.Anything).Return([]domainRAG.Chunk{chunk("a", "fever"), chunk("b", "rash")}, nil)

	size, err := f.svc.LoadSnapshot(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, size)
	assert.Len(t, f.lexical.Search("rash", 5, domainRAG.DefaultPartition), 1)
}

func TestIngestService_HandleEvent(t *testing.T) {
	dir := t.TempDir()

	t.Run("入库投递文件并记账", func(t *testing.T) {
		f := newIngestFixture(t)
		f.expectSuccess()

		path := filepath.Join(dir, "batch.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"documents":[{"text":"Ear pain in children","title":"Ear pain","url":"https://example.org/ear","source":"Health811"}]}`), 0644))
		modTime := time.Unix(1700000000, 0)

		err := f.svc.HandleEvent(&events.CorpusFileEvent{EventType: events.CorpusFileCreated, FilePath: path, ModTime: modTime})
		require.NoError(t, err)
		assert.Equal(t, 1, f.lexical.Size())
		assert.Equal(t, modTime, f.ledger.marked[path])
	})

	t.Run("格式错误的文件不记账", func(t *testing.T) {
		f := newIngestFixture(t)
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"documents":`), 0644))

		err := f.svc.HandleEvent(&events.CorpusFileEvent{EventType: events.CorpusFileModified, FilePath: path})
		require.Error(t, err)
		assert.Empty(t, f.ledger.marked)
	})

	t.Run("忽略其他事件", func(t *testing.T) {
		f := newIngestFixture(t)
		assert.NoError(t, f.svc.HandleEvent(&events.IngestCompletedEvent{}))
	})
}
