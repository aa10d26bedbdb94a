package rag

import "context"

// Embedder 文本向量化能力
type Embedder interface {
	// EmbedQuery 向量化单条查询
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// EmbedTexts 批量向量化，返回顺序与输入一致
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex 向量索引
type VectorIndex interface {
	// Search 在分区内按余弦相似度返回前 limit 个近邻
	Search(ctx context.Context, vector []float32, limit int, partition Partition) ([]RetrievedDocument, error)
	// Upsert 写入片段及其向量，同一 DocID 覆盖
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float32) error
}

// CrossEncoder 交叉编码器打分能力
type CrossEncoder interface {
	// Score 为每个 (query, text) 对打分，返回顺序与 texts 一致
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
	ModelName() string
}

// CorpusRepository 已入库片段的持久化仓库，用于重启后重建词法索引
type CorpusRepository interface {
	SaveChunks(ctx context.Context, chunks []Chunk) error
	ListChunks(ctx context.Context) ([]Chunk, error)
	CountChunks(ctx context.Context) (int, error)
}
