package injector

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lk2023060901/doc-qa-backend/internal/ai"
	"github.com/lk2023060901/doc-qa-backend/internal/conf"
	"github.com/lk2023060901/doc-qa-backend/internal/data"
	kbbiz "github.com/lk2023060901/doc-qa-backend/internal/knowledge/biz"
	kbembedding "github.com/lk2023060901/doc-qa-backend/internal/knowledge/embedding"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	pkgredis "github.com/lk2023060901/doc-qa-backend/internal/pkg/redis"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/workerpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *conf.Config {
	cfg := &conf.Config{
		Chunking: conf.ChunkingConfig{ChunkSize: 100, ChunkOverlap: 20, MinChunkSize: 10, MergeSmallChunks: true},
		Worker:   workerpool.Config{Workers: 2, QueueSize: 4},
	}
	cfg.Server.ShutdownTimeout = time.Second
	cfg.OpenAI = conf.OpenAIConfig{
		APIKey:             "sk-test",
		EmbeddingModel:     "text-embedding-3-small",
		EmbeddingDimension: 8,
		SummaryModel:       "summary",
		ChatModel:          "chat",
		TopK:               3,
	}
	return cfg
}

func TestProvideChunkUseCase(t *testing.T) {
	uc := provideChunkUseCase(testConfig())

	res, err := uc.Preview(&kbbiz.ChunkPreviewRequest{Text: "One. Two. Three."})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Options.ChunkSize)
	assert.True(t, res.Merged)
}

func TestProvideDocumentProcessor(t *testing.T) {
	proc, err := provideDocumentProcessor(testConfig(), logger.NewNop())
	require.NoError(t, err)

	res, err := proc.Process(context.Background(), "a.txt", types.FileTypeTxt, []byte("Hello there. General Kenobi."))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Chunks)
	assert.Zero(t, res.TokenCount, "no encoding configured")

	bad := testConfig()
	bad.Chunking.ChunkOverlap = 100
	_, err = provideDocumentProcessor(bad, logger.NewNop())
	assert.Error(t, err)
}

func TestProvideAIClient(t *testing.T) {
	client, err := provideAIClient(testConfig(), logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "chat", client.Config().ChatModel)

	cfg := testConfig()
	cfg.OpenAI.APIKey = ""
	_, err = provideAIClient(cfg, logger.NewNop())
	assert.ErrorIs(t, err, ai.ErrMissingAPIKey)
}

func TestProvideEmbedder(t *testing.T) {
	cfg := testConfig()

	plain, err := provideEmbedder(&data.Data{}, cfg, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &kbembedding.OpenAIEmbedder{}, plain)
	assert.Equal(t, 8, plain.Dimension())

	mr := miniredis.RunT(t)
	rdb := pkgredis.NewFromUniversal(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), logger.NewNop())
	t.Cleanup(func() { _ = rdb.Close() })

	cfg.OpenAI.EmbeddingCache = true
	cached, err := provideEmbedder(&data.Data{Redis: rdb}, cfg, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &kbembedding.CacheEmbedder{}, cached)
	assert.Equal(t, "text-embedding-3-small", cached.Model())
}

func TestProvideWorkerPool(t *testing.T) {
	pool, cleanup, err := provideWorkerPool(testConfig(), logger.NewNop())
	require.NoError(t, err)

	done := make(chan struct{})
	require.NoError(t, pool.Submit(func() { close(done) }))
	cleanup()

	select {
	case <-done:
	default:
		t.Fatal("submitted task did not run before shutdown returned")
	}
	assert.Error(t, pool.Submit(func() {}), "pool is closed after cleanup")
}
