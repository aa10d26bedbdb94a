package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ontariodoctor/backend/internal/domain/rag"
)

// 确保 CorpusRepositoryImpl 实现了 rag.CorpusRepository 接口
var _ rag.CorpusRepository = (*CorpusRepositoryImpl)(nil)

// CorpusRepositoryImpl 语料片段仓库
type CorpusRepositoryImpl struct {
	db *sql.DB
}

// NewCorpusRepository 创建语料片段仓库
func NewCorpusRepository(db *sql.DB) *CorpusRepositoryImpl {
	return &CorpusRepositoryImpl{db: db}
}

// SaveChunks 批量保存片段，同一 doc_id 覆盖并保留首次写入的顺序号
func (r *CorpusRepositoryImpl) SaveChunks(ctx context.Context, chunks []rag.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM corpus_chunks`).Scan(&seq); err != nil {
		return fmt.Errorf("failed to read sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO corpus_chunks (
			doc_id, text, title, url, source, section, chunk_id, tenant, lang, seq, indexed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			text = excluded.text,
			title = excluded.title,
			url = excluded.url,
			source = excluded.source,
			section = excluded.section,
			chunk_id = excluded.chunk_id,
			tenant = excluded.tenant,
			lang = excluded.lang,
			indexed_at = excluded.indexed_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, c := range chunks {
		seq++
		if _, err := stmt.ExecContext(ctx,
			c.DocID, c.Text, c.Title, c.URL, c.Source, c.Section, c.ChunkID, c.Tenant, c.Lang, seq, now,
		); err != nil {
			return fmt.Errorf("failed to save chunk %s: %w", c.DocID, err)
		}
	}

	return tx.Commit()
}

// ListChunks 按写入顺序返回全部片段
func (r *CorpusRepositoryImpl) ListChunks(ctx context.Context) ([]rag.Chunk, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT doc_id, text, title, url, source, section, chunk_id, tenant, lang
		FROM corpus_chunks ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []rag.Chunk
	for rows.Next() {
		var c rag.Chunk
		if err := rows.Scan(&c.DocID, &c.Text, &c.Title, &c.URL, &c.Source, &c.Section, &c.ChunkID, &c.Tenant, &c.Lang); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// CountChunks 片段总数
func (r *CorpusRepositoryImpl) CountChunks(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM corpus_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}
