package storage

import (
	"github.com/google/wire"
	"github.com/ontariodoctor/backend/internal/domain/rag"
	"github.com/ontariodoctor/backend/internal/domain/triage"
)

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,           // 提供数据库连接
	NewCorpusRepository, // 语料片段仓储
	NewTraceRepository,  // 流水线轨迹仓储
	wire.Bind(new(rag.CorpusRepository), new(*CorpusRepositoryImpl)),
	wire.Bind(new(triage.TraceRepository), new(*TraceRepositoryImpl)),
)
