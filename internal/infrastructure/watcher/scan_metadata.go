package watcher

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ontariodoctor/backend/internal/infrastructure/config"
)

// ScanMetadata 记录已入库的投递文件及其修改时间
// 启动扫描时跳过未变化的文件，避免重复入库
type ScanMetadata struct {
	mu       sync.RWMutex
	files    map[string]time.Time
	filePath string
}

// scanMetadataData 元数据文件结构
type scanMetadataData struct {
	Files map[string]time.Time `json:"files"`
}

// NewScanMetadata 创建元数据管理器，文件位于数据目录
func NewScanMetadata() *ScanMetadata {
	return newScanMetadataAt(filepath.Join(config.GetDataDir(), "corpus_scan.json"))
}

func newScanMetadataAt(path string) *ScanMetadata {
	sm := &ScanMetadata{
		files:    make(map[string]time.Time),
		filePath: path,
	}
	sm.load()
	return sm
}

// IsProcessed 文件在该修改时间下是否已入库
func (sm *ScanMetadata) IsProcessed(path string, modTime time.Time) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	recorded, ok := sm.files[path]
	return ok && recorded.Equal(modTime)
}

// MarkProcessed 记录文件已入库并持久化
func (sm *ScanMetadata) MarkProcessed(path string, modTime time.Time) {
	sm.mu.Lock()
	sm.files[path] = modTime
	sm.mu.Unlock()

	sm.save()
}

// load 从文件加载元数据，文件缺失或损坏时从空表开始
func (sm *ScanMetadata) load() {
	data, err := os.ReadFile(sm.filePath)
	if err != nil {
		return
	}

	var metadata scanMetadataData
	if err := json.Unmarshal(data, &metadata); err != nil {
		return
	}

	sm.mu.Lock()
	for k, v := range metadata.Files {
		sm.files[k] = v
	}
	sm.mu.Unlock()
}

// save 保存元数据到文件
func (sm *ScanMetadata) save() {
	sm.mu.RLock()
	data, err := json.MarshalIndent(scanMetadataData{Files: sm.files}, "", "  ")
	sm.mu.RUnlock()
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(sm.filePath), 0755); err != nil {
		return
	}
	_ = os.WriteFile(sm.filePath, data, 0644)
}
