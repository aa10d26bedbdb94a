package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/domain/triage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB 在临时目录创建测试数据库
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func chunk(source, title string, id int, text string) rag.Chunk {
	return rag.Chunk{
		DocID:   rag.BuildDocID(source, title, id),
		Text:    text,
		Title:   title,
		URL:     "https://example.org/" + title,
		Source:  source,
		Section: "main",
		ChunkID: id,
		Tenant:  "CA-ON",
		Lang:    "en",
	}
}

func TestOpenDB_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDB(path)
	require.NoError(t, err)
	defer db.Close()
}

func TestCorpusRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCorpusRepository(setupTestDB(t))

	t.Run("空库", func(t *testing.T) {
		n, err := repo.CountChunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		chunks, err := repo.ListChunks(ctx)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("保存并按顺序读取", func(t *testing.T) {
		require.NoError(t, repo.SaveChunks(ctx, []rag.Chunk{
			chunk("A", "Fever", 0, "fever one"),
			chunk("A", "Fever", 1, "fever two"),
		}))
		require.NoError(t, repo.SaveChunks(ctx, []rag.Chunk{
			chunk("B", "Cough", 0, "cough one"),
		}))

		chunks, err := repo.ListChunks(ctx)
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		assert.Equal(t, "A:Fever#0", chunks[0].DocID)
		assert.Equal(t, "B:Cough#0", chunks[2].DocID)
		assert.Equal(t, "main", chunks[2].Section)
		assert.Equal(t, "CA-ON", chunks[2].Tenant)
	})

	t.Run("同一 doc_id 覆盖且不改变顺序", func(t *testing.T) {
		require.NoError(t, repo.SaveChunks(ctx, []rag.Chunk{
			chunk("A", "Fever", 0, "fever updated"),
		}))

		n, err := repo.CountChunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		chunks, err := repo.ListChunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, "A:Fever#0", chunks[0].DocID)
		assert.Equal(t, "fever updated", chunks[0].Text)
	})
}

func TestTraceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTraceRepository(setupTestDB(t))

	age := 0
	rec := &triage.TraceRecord{
		TraceID:        "trace-1",
		Triage:         triage.LevelER,
		RedFlags:       []string{"Fever in infant under 3 months requires immediate ER evaluation"},
		RetrievedCount: 0,
		CitationCount:  0,
		AnswerLength:   120,
		Age:            &age,
		Symptoms:       []string{"fever"},
		Stages:         []string{"start", "features_extracted"},
		LatencyMS:      12,
		CreatedAt:      1700000000,
	}
	require.NoError(t, repo.SaveTrace(ctx, rec))

	got, err := repo.GetTrace(ctx, "trace-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, triage.LevelER, got.Triage)
	require.NotNil(t, got.Age)
	assert.Equal(t, 0, *got.Age)
	assert.Equal(t, rec.RedFlags, got.RedFlags)
	assert.Equal(t, []string{}, got.QueryTerms)
	assert.Equal(t, rec.Stages, got.Stages)

	missing, err := repo.GetTrace(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
