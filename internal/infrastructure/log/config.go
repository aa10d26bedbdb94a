package log

import (
	"os"
	"strconv"
	"strings"
)

// Config 日志配置
type Config struct {
	// Level debug, info, warn, error
	Level string `json:"level" env:"LOG_LEVEL"`

	// Format console（彩色，本地调试）、text、json（容器部署）
	Format string `json:"format" env:"LOG_FORMAT"`

	// Output stdout、stderr 或 file:/path/to/log
	Output string `json:"output" env:"LOG_OUTPUT"`

	// AddSource 输出源文件位置
	AddSource bool `json:"add_source" env:"LOG_ADD_SOURCE"`
}

// NewConfigFromEnv 从环境变量创建配置
// ENV=development 强制 debug + console；ENV=production 且未显式指定格式时使用 json
func NewConfigFromEnv() *Config {
	cfg := &Config{
		Level:     getEnvWithDefault("LOG_LEVEL", "info"),
		Format:    getEnvWithDefault("LOG_FORMAT", "console"),
		Output:    getEnvWithDefault("LOG_OUTPUT", "stdout"),
		AddSource: getEnvBool("LOG_ADD_SOURCE", false),
	}

	switch deploymentEnv() {
	case "development":
		cfg.Level = "debug"
		cfg.Format = "console"
		cfg.AddSource = true
	case "production":
		if os.Getenv("LOG_FORMAT") == "" {
			cfg.Format = "json"
		}
	}

	return cfg
}

// deploymentEnv 部署环境（小写），默认 local
func deploymentEnv() string {
	return strings.ToLower(getEnvWithDefault("ENV", "local"))
}

// getEnvWithDefault 获取环境变量，带默认值
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool 获取布尔型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}
