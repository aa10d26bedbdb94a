package wire

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	appRAG "github.com/ontariodoctor/backend/internal/application/rag"
	"github.com/ontariodoctor/backend/internal/domain/events"
	"github.com/ontariodoctor/backend/internal/domain/rag"
	applog "github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/infrastructure/vector"
	"github.com/ontariodoctor/backend/internal/infrastructure/watcher"
	"github.com/ontariodoctor/backend/internal/interfaces"
)

// startupTimeout 启动阶段访问外部依赖的超时
const startupTimeout = 30 * time.Second

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer *interfaces.HTTPServer
	MCPServer  *interfaces.MCPServer
	ingest     *appRAG.IngestService
	store      *vector.QdrantStore
	logger     *slog.Logger

	// 投递目录监听相关
	eventBus      events.EventBus
	corpusWatcher *watcher.CorpusWatcher
	unsubscribe   func()
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	ingest *appRAG.IngestService,
	store *vector.QdrantStore,
	eventBus events.EventBus,
	corpusWatcher *watcher.CorpusWatcher,
) *App {
	return &App{
		HTTPServer:    httpServer,
		MCPServer:     mcpServer,
		ingest:        ingest,
		store:         store,
		eventBus:      eventBus,
		corpusWatcher: corpusWatcher,
		logger:        applog.NewModuleLogger("app", "main"),
	}
}

// Start 启动所有服务，HTTP 服务器在后台运行，errCh 接收其退出错误
func (a *App) Start() (<-chan error, error) {
	a.logger.Info("Starting Ontario triage backend")

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// 向量集合缺失时创建；失败只降级，不阻止启动
	if err := a.store.EnsureCollection(ctx); err != nil {
		a.logger.Error("Failed to ensure vector collection", "error", err)
	}

	// 从持久化语料重建词法快照
	if _, err := a.ingest.LoadSnapshot(ctx); err != nil {
		a.logger.Error("Failed to load lexical snapshot", "error", err)
	}

	a.setupEventSubscribers()
	if a.corpusWatcher != nil {
		if err := a.corpusWatcher.Start(); err != nil {
			return nil, fmt.Errorf("failed to start corpus watcher: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.HTTPServer.Start()
	}()

	a.logger.Info("Ontario triage backend started")
	return errCh, nil
}

// setupEventSubscribers 注册事件订阅者
func (a *App) setupEventSubscribers() {
	if a.eventBus == nil {
		return
	}

	a.unsubscribe = a.eventBus.SubscribeMultiple(
		[]events.EventType{
			events.CorpusFileCreated,
			events.CorpusFileModified,
		},
		events.HandlerFunc(a.ingest.HandleEvent),
	)
	a.logger.Info("Ingest service subscribed to corpus file events")
}

// Stop 停止所有服务；数据库与向量库连接由 wire cleanup 关闭
func (a *App) Stop() error {
	a.logger.Info("Stopping Ontario triage backend")

	if a.corpusWatcher != nil {
		a.corpusWatcher.Stop()
		a.logger.Info("Corpus watcher stopped")
	}

	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.eventBus != nil {
		a.eventBus.Close()
		a.logger.Info("Event bus closed")
	}

	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server", "error", err)
		return err
	}

	a.logger.Info("Ontario triage backend stopped")
	return nil
}

// IngestRunner 命令行入库
type IngestRunner struct {
	ingest   *appRAG.IngestService
	store    *vector.QdrantStore
	eventBus events.EventBus
}

// NewIngestRunner 创建命令行入库器
func NewIngestRunner(ingest *appRAG.IngestService, store *vector.QdrantStore, eventBus events.EventBus) *IngestRunner {
	return &IngestRunner{ingest: ingest, store: store, eventBus: eventBus}
}

// IngestFiles 依次入库多个 JSON 文件
func (r *IngestRunner) IngestFiles(ctx context.Context, paths []string) (*rag.IngestResult, error) {
	defer r.eventBus.Close()

	if err := r.store.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure vector collection: %w", err)
	}

	totals := &rag.IngestResult{}
	for _, path := range paths {
		result, err := r.ingest.IngestFile(ctx, path, appRAG.OriginCLI)
		if err != nil {
			return totals, fmt.Errorf("%s: %w", path, err)
		}
		totals.IngestedCount += result.IngestedCount
		totals.ChunkCount += result.ChunkCount
	}
	return totals, nil
}
