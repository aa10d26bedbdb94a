package rag

import (
	"fmt"
	"sync"
	"testing"

	domainRAG "github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/stretchr/testify/assert"
)

func TestLexicalIndex_MergeAndReplace(t *testing.T) {
	idx := NewLexicalIndex()
	assert.Equal(t, 0, idx.Size())
	assert.Empty(t, idx.Search("fever", 5, domainRAG.DefaultPartition))

	assert.Equal(t, 2, idx.Merge([]domainRAG.Chunk{chunk("a", "fever"), chunk("b", "cough")}))
	assert.Equal(t, 3, idx.Merge([]domainRAG.Chunk{chunk("b", "cough again"), chunk("c", "rash")}))
	assert.Len(t, idx.Search("fever", 5, domainRAG.DefaultPartition), 1)

	assert.Equal(t, 1, idx.Replace([]domainRAG.Chunk{chunk("z", "headache")}))
	assert.Empty(t, idx.Search("fever", 5, domainRAG.DefaultPartition))
}

// 并发入库时，每次检索只能看到完整批次
func TestLexicalIndex_ConcurrentSnapshotSwap(t *testing.T) {
	const (
		batches   = 20
		batchSize = 10
		readers   = 8
	)

	idx := NewLexicalIndex()
	done := make(chan struct{})
	var wg sync.WaitGroup

	var torn sync.Map
	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snapshot := idx.Snapshot()
				size := snapshot.Size()
				hits := snapshot.Search("shared", batches*batchSize, domainRAG.DefaultPartition)
				if size%batchSize != 0 || len(hits) != size {
					torn.Store(r, fmt.Sprintf("size=%d hits=%d", size, len(hits)))
				}
			}
		}(r)
	}

	var writers sync.WaitGroup
	for b := 0; b < batches; b++ {
		writers.Add(1)
		go func(b int) {
			defer writers.Done()
			batch := make([]domainRAG.Chunk, batchSize)
			for i := range batch {
				batch[i] = chunk(fmt.Sprintf("b%d-%d", b, i), fmt.Sprintf("shared batch%d item%d", b, i))
			}
			idx.Merge(batch)
		}(b)
	}
	writers.Wait()
	close(done)
	wg.Wait()

	torn.Range(func(key, value any) bool {
		t.Errorf("reader %v observed a partial snapshot: %v", key, value)
		return true
	})
	assert.Equal(t, batches*batchSize, idx.Size())
}
