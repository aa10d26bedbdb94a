package watcher

import (
	"github.com/google/wire"
	"github.com/ontariodoctor/backend/internal/domain/events"
	"github.com/ontariodoctor/backend/internal/infrastructure/config"
)

// ProviderSet watcher ProviderSet
var ProviderSet = wire.NewSet(
	ProvideEventBus,
	NewScanMetadata,
	ProvideCorpusWatcher,
)

// ProvideEventBus 提供事件总线实例
func ProvideEventBus() events.EventBus {
	return NewEventBus()
}

// ProvideCorpusWatcher 提供投递目录监听器实例
func ProvideCorpusWatcher(cfg *config.CorpusConfig, eventBus events.EventBus, metadata *ScanMetadata) (*CorpusWatcher, error) {
	return NewCorpusWatcher(WatchConfig{
		DropDir:       cfg.DropDir,
		DebounceDelay: cfg.Debounce,
	}, eventBus, metadata)
}
