package reranker

import (
	"github.com/google/wire"
	"github.com/ontariodoctor/backend/internal/domain/rag"
)

// ProviderSet 交叉编码器客户端 ProviderSet
var ProviderSet = wire.NewSet(
	NewClient,
	wire.Bind(new(rag.CrossEncoder), new(*Client)),
)
