package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ontariodoctor/backend/internal/domain/events"
	domainRAG "github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/infrastructure/metrics"
)

// 入库来源
const (
	OriginHTTP    = "http"
	OriginCLI     = "cli"
	OriginWatcher = "watcher"
)

// IngestBatch 入库批次文件格式
type IngestBatch struct {
	Documents []domainRAG.SourceDocument `json:"documents"`
}

// FileLedger 记录已入库的投递文件
type FileLedger interface {
	MarkProcessed(path string, modTime time.Time)
}

// IngestService 入库服务：切分、向量化、写入向量库和本地语料库、切换词法快照
type IngestService struct {
	chunker  *Chunker
	embedder domainRAG.Embedder
	vectors  domainRAG.VectorIndex
	corpus   domainRAG.CorpusRepository
	lexical  *LexicalIndex
	eventBus events.EventBus
	ledger   FileLedger
	logger   *slog.Logger

	// 批次之间串行，读路径不受影响
	mu sync.Mutex
}

// NewIngestService 创建入库服务，eventBus 和 ledger 可为 nil
func NewIngestService(
	chunker *Chunker,
	embedder domainRAG.Embedder,
	vectors domainRAG.VectorIndex,
	corpus domainRAG.CorpusRepository,
	lexical *LexicalIndex,
	eventBus events.EventBus,
	ledger FileLedger,
) *IngestService {
	return &IngestService{
		chunker:  chunker,
		embedder: embedder,
		vectors:  vectors,
		corpus:   corpus,
		lexical:  lexical,
		eventBus: eventBus,
		ledger:   ledger,
		logger:   log.NewModuleLogger("rag", "ingest"),
	}
}

// Ingest 入库一批文档
func (s *IngestService) Ingest(ctx context.Context, docs []domainRAG.SourceDocument, origin string) (*domainRAG.IngestResult, error) {
	if len(docs) == 0 {
		return nil, domainRAG.ErrNoDocuments
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	chunks := s.chunker.ChunkDocuments(docs)
	result := &domainRAG.IngestResult{IngestedCount: len(docs), ChunkCount: len(chunks)}
	if len(chunks) == 0 {
		s.logger.Warn("Ingest batch produced no chunks", "documents", len(docs), "origin", origin)
		return result, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embed chunks: expected %d vectors, got %d", len(chunks), len(vectors))
	}

	if err := s.vectors.Upsert(ctx, chunks, vectors); err != nil {
		return nil, fmt.Errorf("upsert vectors: %w", err)
	}
	if err := s.corpus.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}

	size := s.lexical.Merge(chunks)
	metrics.RecordIngest(len(chunks))

	s.logger.Info("Ingest batch completed",
		"origin", origin,
		"documents", len(docs),
		"chunks", len(chunks),
		"snapshot_size", size,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if s.eventBus != nil {
		s.eventBus.Publish(&events.IngestCompletedEvent{
			Origin:        origin,
			DocumentCount: len(docs),
			ChunkCount:    len(chunks),
			SnapshotSize:  size,
			EventTime:     time.Now(),
		})
	}
	return result, nil
}

// IngestFile 入库一个 {documents:[...]} 格式的 JSON 文件
func (s *IngestService) IngestFile(ctx context.Context, path, origin string) (*domainRAG.IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ingest file: %w", err)
	}
	var batch IngestBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse ingest file %s: %w", path, err)
	}
	return s.Ingest(ctx, batch.Documents, origin)
}

// LoadSnapshot 启动时从本地语料库重建词法快照
func (s *IngestService) LoadSnapshot(ctx context.Context) (int, error) {
	chunks, err := s.corpus.ListChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list persisted chunks: %w", err)
	}
	size := s.lexical.Replace(chunks)
	s.logger.Info("Lexical snapshot loaded", "chunks", size)
	return size, nil
}

// HandleEvent 处理投递目录的文件事件
func (s *IngestService) HandleEvent(event events.Event) error {
	fileEvent, ok := event.(*events.CorpusFileEvent)
	if !ok {
		return nil
	}

	ctx := context.Background()
	result, err := s.IngestFile(ctx, fileEvent.FilePath, OriginWatcher)
	if err != nil {
		s.logger.Error("Failed to ingest dropped corpus file",
			"path", fileEvent.FilePath,
			"error", err,
		)
		return err
	}

	if s.ledger != nil {
		s.ledger.MarkProcessed(fileEvent.FilePath, fileEvent.ModTime)
	}
	s.logger.Info("Ingested dropped corpus file",
		"path", fileEvent.FilePath,
		"documents", result.IngestedCount,
		"chunks", result.ChunkCount,
	)
	return nil
}
