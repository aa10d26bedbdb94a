package vector

import (
	"github.com/google/wire"
	"github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
)

// ProviderSet 向量库 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideQdrantStore,
	wire.Bind(new(rag.VectorIndex), new(*QdrantStore)),
)

// ProvideQdrantStore 提供 Qdrant 连接，cleanup 关闭 gRPC 连接
func ProvideQdrantStore(cfg *config.VectorConfig) (*QdrantStore, func(), error) {
	store, err := NewQdrantStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.NewModuleLogger("vector", "qdrant").Warn("Failed to close qdrant client", "error", err)
		}
	}
	return store, cleanup, nil
}
