package ingest

import (
	"time"

	"trip-assistant/internal/common/config"
)

type Config struct {
	ChunkSize    int
	MinChunkSize int
	MaxChunks    int
	// SeedAttempts bounds how often the seeder polls an empty catalog.
	SeedAttempts int
	SeedInterval time.Duration
}

func ConfigFrom(cfg config.RAGConfig) *Config {
	return &Config{
		ChunkSize:    cfg.ChunkSize,
		MinChunkSize: cfg.MinChunkSize,
		MaxChunks:    cfg.MaxChunks,
		SeedAttempts: 5,
		SeedInterval: time.Second,
	}
}
