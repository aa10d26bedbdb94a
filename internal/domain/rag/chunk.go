package rag

import "fmt"

// Partition 检索分区（租户 + 语言）
type Partition struct {
	Tenant string
	Lang   string
}

// DefaultPartition 安大略省英文语料分区
var DefaultPartition = Partition{Tenant: "CA-ON", Lang: "en"}

// Contains 判断片段是否属于该分区
func (p Partition) Contains(c Chunk) bool {
	return c.Tenant == p.Tenant && c.Lang == p.Lang
}

// SourceDocument 待入库的原始文档
type SourceDocument struct {
	Text    string `json:"text"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source"`
	Section string `json:"section,omitempty"`
}

// Chunk 入库后的文档片段，是检索的最小单位
type Chunk struct {
	DocID   string // source:title#chunk_id，跨批次稳定
	Text    string
	Title   string
	URL     string
	Source  string
	Section string
	ChunkID int // 文档内从 0 开始的序号
	Tenant  string
	Lang    string
}

// BuildDocID 构造片段的稳定复合键
func BuildDocID(source, title string, chunkID int) string {
	return fmt.Sprintf("%s:%s#%d", source, title, chunkID)
}

// ToRetrieved 转换为检索结果，分数由调用方给定
func (c Chunk) ToRetrieved(score float64) RetrievedDocument {
	return RetrievedDocument{
		DocID:   c.DocID,
		Text:    c.Text,
		Title:   c.Title,
		URL:     c.URL,
		Source:  c.Source,
		ChunkID: c.ChunkID,
		Score:   score,
	}
}
