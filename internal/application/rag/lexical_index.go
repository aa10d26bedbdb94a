package rag

import (
	"sync"
	"sync/atomic"

	domainRAG "github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/infrastructure/metrics"
)

// LexicalIndex 持有当前发布的词法快照
// 写入方在锁内构建新快照后一次性替换指针，读取方无锁加载
type LexicalIndex struct {
	current atomic.Pointer[LexicalSnapshot]
	writeMu sync.Mutex
}

// NewLexicalIndex 创建空索引
func NewLexicalIndex() *LexicalIndex {
	idx := &LexicalIndex{}
	idx.current.Store(BuildLexicalSnapshot(nil))
	return idx
}

// Snapshot 当前快照；单次检索只应加载一次
func (i *LexicalIndex) Snapshot() *LexicalSnapshot {
	return i.current.Load()
}

// Size 当前快照片段数
func (i *LexicalIndex) Size() int {
	return i.Snapshot().Size()
}

// Merge 以 当前快照 ∪ chunks 构建新快照并发布，返回新快照大小
func (i *LexicalIndex) Merge(chunks []domainRAG.Chunk) int {
	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	next := i.current.Load().Merge(chunks)
	i.current.Store(next)
	metrics.SetLexicalSnapshotSize(next.Size())
	return next.Size()
}

// Replace 用 chunks 整体重建并发布
func (i *LexicalIndex) Replace(chunks []domainRAG.Chunk) int {
	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	next := BuildLexicalSnapshot(chunks)
	i.current.Store(next)
	metrics.SetLexicalSnapshotSize(next.Size())
	return next.Size()
}

// Search 在当前快照上检索
func (i *LexicalIndex) Search(query string, limit int, partition domainRAG.Partition) []domainRAG.RetrievedDocument {
	return i.Snapshot().Search(query, limit, partition)
}
