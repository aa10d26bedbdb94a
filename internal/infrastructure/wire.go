package infrastructure

import (
	"github.com/google/wire"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/embedding"
	"github.com/ontariodoctor/backend/internal/infrastructure/llm"
	"github.com/ontariodoctor/backend/internal/infrastructure/reranker"
	"github.com/ontariodoctor/backend/internal/infrastructure/rules"
	"github.com/ontariodoctor/backend/internal/infrastructure/storage"
	"github.com/ontariodoctor/backend/internal/infrastructure/vector"
	"github.com/ontariodoctor/backend/internal/infrastructure/watcher"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	vector.ProviderSet,
	embedding.ProviderSet,
	reranker.ProviderSet,
	llm.ProviderSet,
	rules.ProviderSet,
	watcher.ProviderSet,
)
