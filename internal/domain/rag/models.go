package rag

// RetrievedDocument 检索命中的文档片段
// Score 的含义取决于产生它的阶段（融合分或重排分），阶段之间不可比较
type RetrievedDocument struct {
	DocID   string  `json:"doc_id"`
	Text    string  `json:"text"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Source  string  `json:"source"`
	ChunkID int     `json:"chunk_id"`
	Score   float64 `json:"score"`
}

// IngestResult 一次入库批次的统计
type IngestResult struct {
	IngestedCount int `json:"ingested_count"`
	ChunkCount    int `json:"chunk_count"`
}
