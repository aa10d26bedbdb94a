package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// 环境变量名
const (
	EnvHTTPPort          = "TRIAGE_HTTP_PORT"
	EnvDatabasePath      = "TRIAGE_DB_PATH"
	EnvQdrantHost        = "QDRANT_HOST"
	EnvQdrantPort        = "QDRANT_PORT"
	EnvQdrantAPIKey      = "QDRANT_API_KEY"
	EnvQdrantCollection  = "QDRANT_COLLECTION"
	EnvEmbeddingURL      = "EMBEDDING_URL"
	EnvEmbeddingAPIKey   = "EMBEDDING_API_KEY"
	EnvEmbeddingModel    = "EMBEDDING_MODEL"
	EnvRerankerURL       = "RERANKER_URL"
	EnvRerankerModel     = "RERANKER_MODEL"
	EnvLLMURL            = "LLM_URL"
	EnvLLMAPIKey         = "LLM_API_KEY"
	EnvLLMModel          = "LLM_MODEL"
	EnvLLMMode           = "LLM_MODE"
	EnvRetrievalTimeout  = "RETRIEVAL_TIMEOUT"
	EnvGenerationTimeout = "GENERATION_TIMEOUT"
	EnvRulesPath         = "RED_FLAG_RULES_PATH"
	EnvCorpusDropDir     = "CORPUS_DROP_DIR"
	EnvRateLimitRPS      = "CHAT_RATE_LIMIT_RPS"
	EnvRateLimitBurst    = "CHAT_RATE_LIMIT_BURST"
	EnvOTelEnabled       = "OTEL_ENABLED"
	EnvOTelEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTelSampleRatio   = "OTEL_TRACE_SAMPLE_RATIO"
)

// Config 应用配置
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Vector     VectorConfig
	Embedding  EmbeddingConfig
	Reranker   RerankerConfig
	Generation GenerationConfig
	Retrieval  RetrievalConfig
	Rules      RulesConfig
	Corpus     CorpusConfig
	RateLimit  RateLimitConfig
	Telemetry  TelemetryConfig
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort        string
	ShutdownTimeout time.Duration
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Path 为空时使用数据目录下的 triage.db
	Path string
}

// VectorConfig Qdrant 配置
type VectorConfig struct {
	Host       string
	Port       int // gRPC 端口
	APIKey     string
	Collection string
	Dimension  uint64
}

// EmbeddingConfig Embedding 服务配置（OpenAI 兼容 /v1/embeddings）
type EmbeddingConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	Timeout   time.Duration
	CacheSize int // 查询向量 LRU 容量，0 关闭
}

// RerankerConfig 交叉编码器服务配置（POST /v1/rerank）
type RerankerConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GenerationConfig 文本生成服务配置
type GenerationConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Mode        string // completions | chat
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stop        []string
	Timeout     time.Duration
}

// RetrievalConfig 检索参数
type RetrievalConfig struct {
	Tenant       string
	Lang         string
	K            int // 流水线调用检索时的 k
	RerankTopN   int
	LexicalExtra int // k_bm25 = k + LexicalExtra
	RRFConstant  int
	Timeout      time.Duration
	ChunkSize    int // token
	ChunkOverlap int // token
}

// RulesConfig 红旗规则表配置
type RulesConfig struct {
	// Path 为空时使用内置规则表
	Path string
}

// CorpusConfig 语料投递目录配置
type CorpusConfig struct {
	// DropDir 为空时不启用目录监听
	DropDir  string
	Debounce time.Duration
}

// RateLimitConfig /chat 限流配置（按客户端 IP 的令牌桶）
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// TelemetryConfig 可观测性配置
type TelemetryConfig struct {
	OTelEnabled    bool
	OTLPEndpoint   string
	ServiceName    string
	ServiceVersion string
	SampleRatio    float64
}

// NewConfig 创建配置：默认值 + 环境变量覆盖
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        envString(EnvHTTPPort, ":8080"),
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Path: envString(EnvDatabasePath, ""),
		},
		Vector: VectorConfig{
			Host:       envString(EnvQdrantHost, "localhost"),
			Port:       envInt(EnvQdrantPort, 6334),
			APIKey:     envString(EnvQdrantAPIKey, ""),
			Collection: envString(EnvQdrantCollection, "docs"),
			Dimension:  384,
		},
		Embedding: EmbeddingConfig{
			BaseURL:   envString(EnvEmbeddingURL, "http://localhost:8081"),
			APIKey:    envString(EnvEmbeddingAPIKey, ""),
			Model:     envString(EnvEmbeddingModel, "BAAI/bge-small-en-v1.5"),
			Timeout:   30 * time.Second,
			CacheSize: 1024,
		},
		Reranker: RerankerConfig{
			BaseURL: envString(EnvRerankerURL, "http://localhost:8082"),
			Model:   envString(EnvRerankerModel, "BAAI/bge-reranker-base"),
			Timeout: 10 * time.Second,
		},
		Generation: GenerationConfig{
			BaseURL:     envString(EnvLLMURL, "http://localhost:8000"),
			APIKey:      envString(EnvLLMAPIKey, ""),
			Model:       envString(EnvLLMModel, "google/medgemma-4b-it"),
			Mode:        envString(EnvLLMMode, "completions"),
			Temperature: 0.2,
			TopP:        0.95,
			MaxTokens:   512,
			Stop:        []string{"\n\n", "Question:", "User:"},
			Timeout:     envDuration(EnvGenerationTimeout, 60*time.Second),
		},
		Retrieval: RetrievalConfig{
			Tenant:       "CA-ON",
			Lang:         "en",
			K:            8,
			RerankTopN:   3,
			LexicalExtra: 4,
			RRFConstant:  60,
			Timeout:      envDuration(EnvRetrievalTimeout, 30*time.Second),
			ChunkSize:    700,
			ChunkOverlap: 120,
		},
		Rules: RulesConfig{
			Path: envString(EnvRulesPath, ""),
		},
		Corpus: CorpusConfig{
			DropDir:  envString(EnvCorpusDropDir, ""),
			Debounce: 500 * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloat(EnvRateLimitRPS, 2),
			Burst:             envInt(EnvRateLimitBurst, 10),
		},
		Telemetry: TelemetryConfig{
			OTelEnabled:    envBool(EnvOTelEnabled, false),
			OTLPEndpoint:   envString(EnvOTelEndpoint, "http://localhost:4318"),
			ServiceName:    "ontario-triage",
			ServiceVersion: "0.1.0",
			SampleRatio:    envFloat(EnvOTelSampleRatio, 1.0),
		},
	}
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewDatabaseConfig 创建数据库配置
func NewDatabaseConfig(cfg *Config) *DatabaseConfig {
	return &cfg.Database
}

// NewVectorConfig 创建向量库配置
func NewVectorConfig(cfg *Config) *VectorConfig {
	return &cfg.Vector
}

// NewEmbeddingConfig 创建 Embedding 配置
func NewEmbeddingConfig(cfg *Config) *EmbeddingConfig {
	return &cfg.Embedding
}

// NewRerankerConfig 创建重排配置
func NewRerankerConfig(cfg *Config) *RerankerConfig {
	return &cfg.Reranker
}

// NewGenerationConfig 创建生成配置
func NewGenerationConfig(cfg *Config) *GenerationConfig {
	return &cfg.Generation
}

// NewRetrievalConfig 创建检索配置
func NewRetrievalConfig(cfg *Config) *RetrievalConfig {
	return &cfg.Retrieval
}

// NewRulesConfig 创建规则表配置
func NewRulesConfig(cfg *Config) *RulesConfig {
	return &cfg.Rules
}

// NewCorpusConfig 创建语料目录配置
func NewCorpusConfig(cfg *Config) *CorpusConfig {
	return &cfg.Corpus
}

// NewRateLimitConfig 创建限流配置
func NewRateLimitConfig(cfg *Config) *RateLimitConfig {
	return &cfg.RateLimit
}

// NewTelemetryConfig 创建可观测性配置
func NewTelemetryConfig(cfg *Config) *TelemetryConfig {
	return &cfg.Telemetry
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}
