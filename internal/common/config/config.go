// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	RAG      RAGConfig      `mapstructure:"rag"`
	Session  SessionConfig  `mapstructure:"session"`
	Intent   IntentConfig   `mapstructure:"intent"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name            string `mapstructure:"name"`
	Version         string `mapstructure:"version"`
	Environment     string `mapstructure:"environment"`
	DefaultLanguage string `mapstructure:"default_language"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	ConnLifetime   int    `mapstructure:"conn_lifetime"` // milliseconds
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	MaxRetries int      `mapstructure:"max_retries"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// GenAIConfig points at an OpenAI compatible completion + embedding endpoint.
type GenAIConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	APIKey            string  `mapstructure:"api_key"`
	ChatModel         string  `mapstructure:"chat_model"`
	EmbeddingModel    string  `mapstructure:"embedding_model"`
	Timeout           int     `mapstructure:"timeout"` // milliseconds
	MaxRetries        int     `mapstructure:"max_retries"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	Temperature       float64 `mapstructure:"temperature"`
	MaxTokens         int     `mapstructure:"max_tokens"`
}

// RAGConfig controls chunking and the vector store backend.
type RAGConfig struct {
	ChunkSize        int    `mapstructure:"chunk_size"`
	MinChunkSize     int    `mapstructure:"min_chunk_size"`
	MaxChunks        int    `mapstructure:"max_chunks"`
	EmbedConcurrency int    `mapstructure:"embed_concurrency"`
	VectorBackend    string `mapstructure:"vector_backend"` // memory | elasticsearch
	Index            string `mapstructure:"index"`
	Dimensions       int    `mapstructure:"dimensions"`
	SeedOnStart      bool   `mapstructure:"seed_on_start"`
}

type SessionConfig struct {
	Backend     string `mapstructure:"backend"` // memory | redis
	MaxSessions int    `mapstructure:"max_sessions"`
	TTL         int    `mapstructure:"ttl"` // milliseconds
	KeyPrefix   string `mapstructure:"key_prefix"`
}

type IntentConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	TaxonomyPath        string  `mapstructure:"taxonomy_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type TracingConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}
