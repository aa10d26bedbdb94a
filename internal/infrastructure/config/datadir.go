package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

const (
	// EnvDataDir 数据目录环境变量名
	EnvDataDir = "TRIAGE_DATA_DIR"
	// DefaultDataDirName 默认数据目录名
	DefaultDataDirName = ".ontario-triage"
	// DefaultDatabaseFile 默认 SQLite 文件名
	DefaultDatabaseFile = "triage.db"
)

var (
	dataDirOnce sync.Once
	dataDirPath string
)

// GetDataDir 获取数据根目录
// 优先读取 TRIAGE_DATA_DIR，默认 ~/.ontario-triage/
func GetDataDir() string {
	dataDirOnce.Do(func() {
		if dir := os.Getenv(EnvDataDir); dir != "" {
			dataDirPath = dir
			return
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			dataDirPath = DefaultDataDirName
			return
		}
		dataDirPath = filepath.Join(homeDir, DefaultDataDirName)
	})
	return dataDirPath
}

// ResetDataDir 重置数据目录缓存（仅用于测试）
func ResetDataDir() {
	dataDirOnce = sync.Once{}
	dataDirPath = ""
}

// ResolveDatabasePath 返回 SQLite 路径，未配置时落在数据目录下
func (c *DatabaseConfig) ResolveDatabasePath() string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(GetDataDir(), DefaultDatabaseFile)
}

// LoadDotEnv 加载 .env 文件，已存在的环境变量不会被覆盖；文件缺失不视为错误
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}
