package embedding

import (
	"github.com/google/wire"
	"github.com/ontariodoctor/backend/internal/domain/rag"
)

// ProviderSet 向量化客户端 ProviderSet
var ProviderSet = wire.NewSet(
	NewClient,
	wire.Bind(new(rag.Embedder), new(*Client)),
)
