package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ontariodoctor/backend/internal/domain/events"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
)

// WatchConfig CorpusWatcher 配置
type WatchConfig struct {
	// DropDir 语料投递目录，放入 *.json 批次文件
	DropDir string
	// DebounceDelay 防抖延迟，等待文件写完
	DebounceDelay time.Duration
}

// CorpusWatcher 监听语料投递目录，文件稳定后发布 CorpusFileEvent
type CorpusWatcher struct {
	config   WatchConfig
	eventBus events.EventBus
	watcher  *fsnotify.Watcher
	metadata *ScanMetadata
	logger   *slog.Logger

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewCorpusWatcher 创建投递目录监听器
func NewCorpusWatcher(config WatchConfig, eventBus events.EventBus, metadata *ScanMetadata) (*CorpusWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &CorpusWatcher{
		config:         config,
		eventBus:       eventBus,
		watcher:        watcher,
		metadata:       metadata,
		logger:         log.NewModuleLogger("watcher", "corpus_watcher"),
		debounceTimers: make(map[string]*time.Timer),
		stopCh:         make(chan struct{}),
	}, nil
}

// Enabled 是否配置了投递目录
func (cw *CorpusWatcher) Enabled() bool {
	return cw.config.DropDir != ""
}

// Metadata 已处理文件记录
func (cw *CorpusWatcher) Metadata() *ScanMetadata {
	return cw.metadata
}

// Start 扫描已有文件并开始监听；未配置目录时直接返回
func (cw *CorpusWatcher) Start() error {
	if !cw.Enabled() {
		cw.logger.Info("Corpus drop directory not configured, watcher disabled")
		return nil
	}

	if err := os.MkdirAll(cw.config.DropDir, 0755); err != nil {
		return err
	}

	cw.logger.Info("Starting corpus watcher", "drop_dir", cw.config.DropDir)

	if err := cw.watcher.Add(cw.config.DropDir); err != nil {
		return err
	}

	pending := cw.scanDropDir()
	if pending > 0 {
		cw.logger.Info("Found pending corpus files on startup", "count", pending)
	}

	cw.wg.Add(1)
	go cw.watchLoop()
	return nil
}

// Stop 停止监听，可重复调用
func (cw *CorpusWatcher) Stop() {
	cw.stopOnce.Do(func() {
		close(cw.stopCh)
		cw.watcher.Close()
		cw.wg.Wait()

		cw.debounceMu.Lock()
		for _, timer := range cw.debounceTimers {
			timer.Stop()
		}
		cw.debounceMu.Unlock()

		cw.logger.Info("Corpus watcher stopped")
	})
}

// scanDropDir 为未处理或已变化的文件发布 Created 事件
func (cw *CorpusWatcher) scanDropDir() int {
	entries, err := os.ReadDir(cw.config.DropDir)
	if err != nil {
		cw.logger.Error("Failed to read drop directory", "error", err)
		return 0
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !isCorpusFile(entry.Name()) {
			continue
		}
		path := filepath.Join(cw.config.DropDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if cw.metadata != nil && cw.metadata.IsProcessed(path, info.ModTime()) {
			continue
		}

		cw.eventBus.Publish(&events.CorpusFileEvent{
			EventType: events.CorpusFileCreated,
			FilePath:  path,
			ModTime:   info.ModTime(),
			FileSize:  info.Size(),
			EventTime: time.Now(),
		})
		count++
	}
	return count
}

// watchLoop 事件监听循环
func (cw *CorpusWatcher) watchLoop() {
	defer cw.wg.Done()

	for {
		select {
		case <-cw.stopCh:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if isCorpusFile(event.Name) && (event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) {
				cw.debounce(event)
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("Watcher error", "error", err)
		}
	}
}

// debounce 同一文件在延迟内的多次事件合并为一次
func (cw *CorpusWatcher) debounce(fsEvent fsnotify.Event) {
	cw.debounceMu.Lock()
	defer cw.debounceMu.Unlock()

	eventType := events.CorpusFileModified
	if timer, exists := cw.debounceTimers[fsEvent.Name]; exists {
		timer.Stop()
	}
	if fsEvent.Has(fsnotify.Create) {
		eventType = events.CorpusFileCreated
	}

	cw.debounceTimers[fsEvent.Name] = time.AfterFunc(cw.config.DebounceDelay, func() {
		cw.debounceMu.Lock()
		delete(cw.debounceTimers, fsEvent.Name)
		cw.debounceMu.Unlock()

		cw.emit(fsEvent.Name, eventType)
	})
}

func (cw *CorpusWatcher) emit(path string, eventType events.EventType) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	cw.eventBus.Publish(&events.CorpusFileEvent{
		EventType: eventType,
		FilePath:  path,
		ModTime:   info.ModTime(),
		FileSize:  info.Size(),
		EventTime: time.Now(),
	})

	cw.logger.Debug("Corpus file event emitted",
		"type", eventType,
		"path", path,
		"size", info.Size(),
	)
}

// isCorpusFile 只处理 .json 批次文件，忽略编辑器临时文件
func isCorpusFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(strings.ToLower(name), ".json") && !strings.HasPrefix(name, ".")
}
