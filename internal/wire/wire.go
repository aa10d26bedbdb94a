//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"
	"github.com/ontariodoctor/backend/internal/application"
	appRAG "github.com/ontariodoctor/backend/internal/application/rag"
	"github.com/ontariodoctor/backend/internal/infrastructure"
	"github.com/ontariodoctor/backend/internal/infrastructure/watcher"
	"github.com/ontariodoctor/backend/internal/interfaces"
)

// InitializeAll 初始化所有服务（HTTP + MCP + 投递目录监听）
func InitializeAll() (*App, func(), error) {
	wire.Build(
		// 按层组合 ProviderSet
		infrastructure.ProviderSet, // 基础设施层
		application.ProviderSet,    // 应用层
		interfaces.ProviderSet,     // 接口层
		// 接口绑定：已处理文件记录 -> watcher 的扫描元数据
		wire.Bind(new(appRAG.FileLedger), new(*watcher.ScanMetadata)),
		NewApp, // 组合所有服务的应用结构
	)
	return nil, nil, nil
}

// InitializeIngest 初始化命令行入库所需的服务
func InitializeIngest() (*IngestRunner, func(), error) {
	wire.Build(
		infrastructure.ProviderSet,
		application.ProviderSet,
		wire.Bind(new(appRAG.FileLedger), new(*watcher.ScanMetadata)),
		NewIngestRunner,
	)
	return nil, nil, nil
}
