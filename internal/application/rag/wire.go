package rag

import "github.com/google/wire"

// ProviderSet RAG 应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewLexicalIndex,
	NewChunker,
	NewHybridRetriever,
	NewReranker,
	NewSearchService,
	NewIngestService,
)
