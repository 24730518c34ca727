package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/chunker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, chunker.DefaultChunkSize, cfg.Chunking.ChunkSize)
	assert.Equal(t, chunker.DefaultChunkOverlap, cfg.Chunking.ChunkOverlap)
	assert.Equal(t, chunker.DefaultMinChunkSize, cfg.Chunking.MinChunkSize)
	assert.True(t, cfg.Chunking.MergeSmallChunks)
	assert.Equal(t, "localhost:19530", cfg.Milvus.Address)
	assert.Equal(t, "document_chunks", cfg.Milvus.Collection)
	assert.Equal(t, 30*time.Second, cfg.Milvus.RequestTimeout)
	assert.Equal(t, int64(50<<20), cfg.Upload.MaxFileSize)
	assert.Equal(t, 8, cfg.Worker.Workers)
	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addrs)
	assert.InDelta(t, 0.2, cfg.OpenAI.Temperature, 1e-6)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.NeedRedis())
}

func TestConfig_NeedRedis(t *testing.T) {
	var c Config
	assert.False(t, c.NeedRedis())
	c.RateLimit.Enabled = true
	assert.True(t, c.NeedRedis())
	c = Config{OpenAI: OpenAIConfig{EmbeddingCache: true}}
	assert.True(t, c.NeedRedis())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
chunking:
  chunk_size: 400
  chunk_overlap: 50
  min_chunk_size: 40
  merge_small_chunks: false
milvus:
  address: milvus:19530
  collection: chunks_test
  request_timeout: 5s
upload:
  allowed_extensions: [".txt"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, &chunker.Options{ChunkSize: 400, ChunkOverlap: 50, MinChunkSize: 40}, cfg.Chunking.Options())
	assert.False(t, cfg.Chunking.MergeSmallChunks)
	assert.Equal(t, "milvus:19530", cfg.Milvus.Address)
	assert.Equal(t, "chunks_test", cfg.Milvus.Collection)
	assert.Equal(t, 5*time.Second, cfg.Milvus.RequestTimeout)
	assert.Equal(t, []string{".txt"}, cfg.Upload.AllowedExtensions)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DOC_QA_CHUNKING_CHUNK_SIZE", "500")
	t.Setenv("DOC_QA_OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Chunking.ChunkSize)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"overlap not smaller than size", map[string]string{"DOC_QA_CHUNKING_CHUNK_OVERLAP": "1000"}},
		{"bad port", map[string]string{"DOC_QA_SERVER_PORT": "0"}},
		{"bad index type", map[string]string{"DOC_QA_MILVUS_INDEX_TYPE": "SCANN"}},
		{"no workers", map[string]string{"DOC_QA_WORKER_WORKERS": "0"}},
		{"rate limit without window", map[string]string{"DOC_QA_RATE_LIMIT_ENABLED": "true", "DOC_QA_RATE_LIMIT_WINDOW": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestChunkingOptions_InvalidIsReported(t *testing.T) {
	c := ChunkingConfig{ChunkSize: 100, ChunkOverlap: 100}
	assert.ErrorIs(t, c.Options().Validate(), chunker.ErrInvalidOptions)
}
