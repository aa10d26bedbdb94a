package rag

import (
	"math"
	"sort"
	"strings"

	domainRAG "github.com/ontariodoctor/backend/internal/domain/rag"
)

// BM25 参数
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// Tokenize 小写后按空白切分
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// LexicalSnapshot 不可变的 BM25 索引快照
// 构建完成后不再修改，可被任意多个检索并发读取
type LexicalSnapshot struct {
	chunks    []domainRAG.Chunk
	termFreqs []map[string]int
	docLens   []int
	docFreq   map[string]int
	avgDocLen float64
}

// BuildLexicalSnapshot 由片段列表构建快照，同一 doc_id 保留最后一次出现的内容和第一次出现的位置
func BuildLexicalSnapshot(chunks []domainRAG.Chunk) *LexicalSnapshot {
	position := make(map[string]int, len(chunks))
	deduped := make([]domainRAG.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if i, ok := position[c.DocID]; ok {
			deduped[i] = c
			continue
		}
		position[c.DocID] = len(deduped)
		deduped = append(deduped, c)
	}

	s := &LexicalSnapshot{
		chunks:    deduped,
		termFreqs: make([]map[string]int, len(deduped)),
		docLens:   make([]int, len(deduped)),
		docFreq:   make(map[string]int),
	}

	total := 0
	for i, c := range deduped {
		tokens := Tokenize(c.Text)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for tok := range tf {
			s.docFreq[tok]++
		}
		s.termFreqs[i] = tf
		s.docLens[i] = len(tokens)
		total += len(tokens)
	}
	if len(deduped) > 0 {
		s.avgDocLen = float64(total) / float64(len(deduped))
	}
	return s
}

// Merge 返回 旧快照 ∪ 新片段 的新快照，doc_id 相同时新片段覆盖
func (s *LexicalSnapshot) Merge(chunks []domainRAG.Chunk) *LexicalSnapshot {
	all := make([]domainRAG.Chunk, 0, s.Size()+len(chunks))
	if s != nil {
		all = append(all, s.chunks...)
	}
	all = append(all, chunks...)
	return BuildLexicalSnapshot(all)
}

// Size 快照中的片段数
func (s *LexicalSnapshot) Size() int {
	if s == nil {
		return 0
	}
	return len(s.chunks)
}

// idf Lucene 形式，恒为正
func (s *LexicalSnapshot) idf(term string) float64 {
	n := float64(s.docFreq[term])
	N := float64(len(s.chunks))
	return math.Log(1 + (N-n+0.5)/(n+0.5))
}

// score 计算查询对第 i 个片段的 BM25 分
func (s *LexicalSnapshot) score(queryTokens []string, i int) float64 {
	tf := s.termFreqs[i]
	norm := bm25K1 * (1 - bm25B + bm25B*float64(s.docLens[i])/s.avgDocLen)

	var total float64
	for _, term := range queryTokens {
		f := float64(tf[term])
		if f == 0 {
			continue
		}
		total += s.idf(term) * f * (bm25K1 + 1) / (f + norm)
	}
	return total
}

// Search 在分区内按 BM25 分数返回前 limit 个片段，零分片段不返回
// 同分按快照顺序
func (s *LexicalSnapshot) Search(query string, limit int, partition domainRAG.Partition) []domainRAG.RetrievedDocument {
	if s.Size() == 0 || limit <= 0 {
		return nil
	}
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	type scored struct {
		index int
		score float64
	}
	candidates := make([]scored, 0)
	for i, c := range s.chunks {
		if !partition.Contains(c) {
			continue
		}
		if sc := s.score(queryTokens, i); sc > 0 {
			candidates = append(candidates, scored{index: i, score: sc})
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	docs := make([]domainRAG.RetrievedDocument, len(candidates))
	for i, c := range candidates {
		docs[i] = s.chunks[c.index].ToRetrieved(c.score)
	}
	return docs
}

// Chunks 返回快照片段的副本
func (s *LexicalSnapshot) Chunks() []domainRAG.Chunk {
	if s == nil {
		return nil
	}
	out := make([]domainRAG.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}
