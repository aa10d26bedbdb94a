// Package vector 提供基于 Qdrant 的向量索引
package vector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/qdrant/go-client/qdrant"
)

// payload 字段名
const (
	fieldDocID   = "doc_id"
	fieldText    = "text"
	fieldTitle   = "title"
	fieldURL     = "url"
	fieldSource  = "source"
	fieldSection = "section"
	fieldChunkID = "chunk_id"
	fieldTenant  = "tenant"
	fieldLang    = "lang"
)

// QdrantStore Qdrant 向量索引
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	dimension  uint64
	logger     *slog.Logger
}

var _ rag.VectorIndex = (*QdrantStore)(nil)

// NewQdrantStore 创建 Qdrant 客户端，gRPC 连接在首次调用时建立
func NewQdrantStore(cfg *config.VectorConfig) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &QdrantStore{
		client:     client,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		logger:     log.NewModuleLogger("vector", "qdrant"),
	}, nil
}

// EnsureCollection 确保集合存在（余弦距离）
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	existing, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range existing {
		if name == s.collection {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}

	s.logger.Info("Created vector collection",
		"collection", s.collection,
		"dimension", s.dimension,
	)
	return nil
}

// Search 在分区内检索最近邻
func (s *QdrantStore) Search(ctx context.Context, vector []float32, limit int, partition rag.Partition) ([]rag.RetrievedDocument, error) {
	if limit <= 0 {
		return nil, nil
	}

	n := uint64(limit)
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &n,
		Filter:         partitionFilter(partition),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query qdrant: %w", err)
	}

	docs := make([]rag.RetrievedDocument, 0, len(hits))
	for _, hit := range hits {
		doc, ok := payloadToDocument(hit.GetPayload(), float64(hit.GetScore()))
		if !ok {
			s.logger.Warn("Skipping vector hit without doc_id", "point_id", hit.GetId().String())
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Upsert 写入片段向量，同一 doc_id 覆盖旧点
func (s *QdrantStore) Upsert(ctx context.Context, chunks []rag.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk count %d does not match vector count %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(PointID(chunk.DocID)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(buildPayload(chunk)),
		}
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	s.logger.Debug("Upserted points", "collection", s.collection, "count", len(points))
	return nil
}

// HealthCheck 检查 Qdrant 可用性
func (s *QdrantStore) HealthCheck(ctx context.Context) error {
	_, err := s.client.HealthCheck(ctx)
	return err
}

// Close 关闭连接
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// PointID doc_id 对应的确定性点 ID（UUIDv5）
func PointID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(docID)).String()
}

func partitionFilter(p rag.Partition) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(fieldTenant, p.Tenant),
			qdrant.NewMatch(fieldLang, p.Lang),
		},
	}
}

func buildPayload(c rag.Chunk) map[string]any {
	return map[string]any{
		fieldDocID:   c.DocID,
		fieldText:    c.Text,
		fieldTitle:   c.Title,
		fieldURL:     c.URL,
		fieldSource:  c.Source,
		fieldSection: c.Section,
		fieldChunkID: int64(c.ChunkID),
		fieldTenant:  c.Tenant,
		fieldLang:    c.Lang,
	}
}

// payloadToDocument 从 payload 还原检索结果，缺少 doc_id 时返回 false
func payloadToDocument(payload map[string]*qdrant.Value, score float64) (rag.RetrievedDocument, bool) {
	doc := rag.RetrievedDocument{
		DocID:   payload[fieldDocID].GetStringValue(),
		Text:    payload[fieldText].GetStringValue(),
		Title:   payload[fieldTitle].GetStringValue(),
		URL:     payload[fieldURL].GetStringValue(),
		Source:  payload[fieldSource].GetStringValue(),
		ChunkID: int(payload[fieldChunkID].GetIntegerValue()),
		Score:   score,
	}
	return doc, doc.DocID != ""
}
