package rag

import "errors"

var (
	// ErrContractViolation 调用方违反数据契约（例如候选缺少 doc_id），需要上抛为 500
	ErrContractViolation = errors.New("contract violation")

	// ErrEmptyQuery 空查询
	ErrEmptyQuery = errors.New("empty query")

	// ErrNoDocuments 入库批次为空
	ErrNoDocuments = errors.New("no documents to ingest")
)
