package rag

import (
	"log/slog"
	"strings"

	domainRAG "github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/infrastructure/tokenizer"
)

const (
	defaultSection = "main"
	// 编码器不可用时，按约 0.75 个词一个 token 换算窗口
	wordsPerToken = 0.75
)

// Chunker 按 token 窗口切分文档
type Chunker struct {
	size      int
	overlap   int
	partition domainRAG.Partition
	tokenizer *tokenizer.Tokenizer
	logger    *slog.Logger
}

// NewChunker 创建切分器，编码器加载失败时退化为按词切分
func NewChunker(cfg *config.RetrievalConfig) *Chunker {
	logger := log.NewModuleLogger("rag", "chunker")
	tok, err := tokenizer.Get()
	if err != nil {
		logger.Warn("Tokenizer unavailable, falling back to word windows", "error", err)
	}
	return newChunker(cfg.ChunkSize, cfg.ChunkOverlap, domainRAG.Partition{Tenant: cfg.Tenant, Lang: cfg.Lang}, tok)
}

func newChunker(size, overlap int, partition domainRAG.Partition, tok *tokenizer.Tokenizer) *Chunker {
	if size <= 0 {
		size = 700
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Chunker{
		size:      size,
		overlap:   overlap,
		partition: partition,
		tokenizer: tok,
		logger:    log.NewModuleLogger("rag", "chunker"),
	}
}

// ChunkDocument 切分单个文档，空文本不产生片段
func (c *Chunker) ChunkDocument(doc domainRAG.SourceDocument) []domainRAG.Chunk {
	var pieces []string
	if c.tokenizer != nil {
		pieces = c.tokenWindows(doc.Text)
	} else {
		pieces = c.wordWindows(doc.Text)
	}

	section := doc.Section
	if section == "" {
		section = defaultSection
	}

	chunks := make([]domainRAG.Chunk, 0, len(pieces))
	for _, text := range pieces {
		if strings.TrimSpace(text) == "" {
			continue
		}
		chunkID := len(chunks)
		chunks = append(chunks, domainRAG.Chunk{
			DocID:   domainRAG.BuildDocID(doc.Source, doc.Title, chunkID),
			Text:    text,
			Title:   doc.Title,
			URL:     doc.URL,
			Source:  doc.Source,
			Section: section,
			ChunkID: chunkID,
			Tenant:  c.partition.Tenant,
			Lang:    c.partition.Lang,
		})
	}
	return chunks
}

// ChunkDocuments 按输入顺序切分一批文档
func (c *Chunker) ChunkDocuments(docs []domainRAG.SourceDocument) []domainRAG.Chunk {
	var all []domainRAG.Chunk
	for _, doc := range docs {
		all = append(all, c.ChunkDocument(doc)...)
	}
	return all
}

// tokenWindows 窗口边界可能切在多字节字符中间，解码后丢弃非法字节
func (c *Chunker) tokenWindows(text string) []string {
	tokens := c.tokenizer.Encode(text)
	if len(tokens) == 0 {
		return nil
	}
	var out []string
	for _, w := range windows(len(tokens), c.size, c.overlap) {
		out = append(out, strings.ToValidUTF8(c.tokenizer.Decode(tokens[w[0]:w[1]]), ""))
	}
	return out
}

func (c *Chunker) wordWindows(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	size := int(float64(c.size) * wordsPerToken)
	overlap := int(float64(c.overlap) * wordsPerToken)
	if size <= 0 {
		size = 1
	}
	if overlap >= size {
		overlap = 0
	}
	var out []string
	for _, w := range windows(len(words), size, overlap) {
		out = append(out, strings.Join(words[w[0]:w[1]], " "))
	}
	return out
}

// windows 返回 [start, end) 区间，步长 size-overlap，最后一个窗口到达末尾即停止
func windows(n, size, overlap int) [][2]int {
	step := size - overlap
	if step <= 0 {
		step = size
	}
	var out [][2]int
	for start := 0; start < n; start += step {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
		if end == n {
			break
		}
	}
	return out
}
