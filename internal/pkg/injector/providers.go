package injector

import (
	"github.com/google/wire"
	"github.com/lk2023060901/doc-qa-backend/internal/ai"
	"github.com/lk2023060901/doc-qa-backend/internal/conf"
	"github.com/lk2023060901/doc-qa-backend/internal/data"
	kbbiz "github.com/lk2023060901/doc-qa-backend/internal/knowledge/biz"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/chunker"
	kbdata "github.com/lk2023060901/doc-qa-backend/internal/knowledge/data"
	kbembedding "github.com/lk2023060901/doc-qa-backend/internal/knowledge/embedding"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/loader"
	kbprocessor "github.com/lk2023060901/doc-qa-backend/internal/knowledge/processor"
	kbservice "github.com/lk2023060901/doc-qa-backend/internal/knowledge/service"
	kbstorage "github.com/lk2023060901/doc-qa-backend/internal/knowledge/storage"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/milvus"
	pkgredis "github.com/lk2023060901/doc-qa-backend/internal/pkg/redis"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/workerpool"
	"github.com/lk2023060901/doc-qa-backend/internal/server"
	"go.uber.org/zap"
)

// ProviderSet is the Wire provider set for all dependencies
var ProviderSet = wire.NewSet(
	// Data layer
	dataProviderSet,

	// Repositories
	repositoryProviderSet,

	// Use cases
	useCaseProviderSet,

	// Services
	serviceProviderSet,

	// HTTP services
	httpServiceProviderSet,

	// Servers
	serverProviderSet,
)

// Data layer providers
var dataProviderSet = wire.NewSet(
	data.NewData,
	provideRedisClient,
)

// Repository providers
var repositoryProviderSet = wire.NewSet(
	provideDocumentRepo,
)

// Use case providers
var useCaseProviderSet = wire.NewSet(
	provideDocumentUseCase,
	provideQAUseCase,
	provideChunkUseCase,
)

// Service providers
var serviceProviderSet = wire.NewSet(
	provideFileStore,
	provideEmbedder,
	provideMilvusIndex,
	provideDocumentProcessor,
	provideAIClient,
	provideWorkerPool,
)

// HTTP service providers
var httpServiceProviderSet = wire.NewSet(
	provideDocumentService,
	provideChatService,
)

// Server providers
var serverProviderSet = wire.NewSet(
	server.NewHTTPServer,
	wire.Bind(new(server.ReadinessChecker), new(*data.Data)),
)

// Data layer helpers

func provideRedisClient(d *data.Data) *pkgredis.Client {
	return d.Redis
}

// Repository providers

func provideDocumentRepo(d *data.Data, config *conf.Config) (*kbdata.DocumentRepo, error) {
	repo := kbdata.NewDocumentRepo(d.DB)
	if config.Database.AutoMigrate {
		if err := repo.Migrate(); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// Service providers

func provideFileStore(d *data.Data, log *logger.Logger) *kbstorage.MinIOStore {
	return kbstorage.NewMinIOStore(d.MinIO, log)
}

func provideEmbedder(d *data.Data, config *conf.Config, log *logger.Logger) (kbembedding.Embedder, error) {
	oc := config.OpenAI
	embedder, err := kbembedding.NewOpenAIEmbedder(&kbembedding.OpenAIEmbedderConfig{
		APIKey:    oc.APIKey,
		BaseURL:   oc.BaseURL,
		Model:     oc.EmbeddingModel,
		Dimension: oc.EmbeddingDimension,
		Timeout:   oc.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}
	if !oc.EmbeddingCache || d.Redis == nil {
		return embedder, nil
	}
	return kbembedding.NewCacheEmbedder(embedder, d.Redis, &kbembedding.CacheEmbedderConfig{
		TTL: oc.EmbeddingCacheTTL,
	}, log), nil
}

func provideMilvusIndex(d *data.Data, embedder kbembedding.Embedder, config *conf.Config, log *logger.Logger) (*kbstorage.MilvusIndex, error) {
	indexType, err := milvus.ParseIndexType(config.Milvus.IndexType)
	if err != nil {
		return nil, err
	}
	return kbstorage.NewMilvusIndex(d.Milvus, embedder, kbstorage.MilvusIndexConfig{
		Collection: config.Milvus.Collection,
		IndexType:  indexType,
		MetricType: milvus.MetricType(config.Milvus.MetricType),
		BatchSize:  config.Milvus.BatchSize,
	}, log), nil
}

func provideDocumentProcessor(config *conf.Config, log *logger.Logger) (*kbprocessor.DocumentProcessor, error) {
	if err := loader.SetDocxLicense(config.Docx.LicenseKey); err != nil {
		// 未授权时 docx 解析会失败，其余类型不受影响
		log.Warn("failed to set docx license", zap.Error(err))
	}

	c, err := chunker.New(config.Chunking.Options())
	if err != nil {
		return nil, err
	}

	opts := kbprocessor.Options{MergeSmallChunks: config.Chunking.MergeSmallChunks}
	if config.Chunking.TokenEncoding != "" {
		counter, err := kbprocessor.NewTiktokenCounter(config.Chunking.TokenEncoding)
		if err != nil {
			return nil, err
		}
		opts.Counter = counter
	}
	return kbprocessor.NewDocumentProcessor(loader.NewFactory(), c, opts, log), nil
}

func provideAIClient(config *conf.Config, log *logger.Logger) (*ai.Client, error) {
	oc := config.OpenAI
	return ai.New(ai.Config{
		BaseURL:         oc.BaseURL,
		APIKey:          oc.APIKey,
		SummaryModel:    oc.SummaryModel,
		ChatModel:       oc.ChatModel,
		MaxTokens:       oc.MaxTokens,
		Temperature:     oc.Temperature,
		SummaryMaxInput: oc.SummaryMaxInput,
		Timeout:         oc.Timeout,
	}, log)
}

func provideWorkerPool(config *conf.Config, log *logger.Logger) (*workerpool.Pool, func(), error) {
	pool, err := workerpool.New(&config.Worker, log.Named("worker"))
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := pool.Shutdown(config.Server.ShutdownTimeout); err != nil {
			log.Warn("worker pool did not drain in time", zap.Error(err))
		}
	}
	return pool, cleanup, nil
}

// Use case providers

func provideDocumentUseCase(
	repo *kbdata.DocumentRepo,
	files *kbstorage.MinIOStore,
	index *kbstorage.MilvusIndex,
	proc *kbprocessor.DocumentProcessor,
	client *ai.Client,
	pool *workerpool.Pool,
	config *conf.Config,
	log *logger.Logger,
) *kbbiz.DocumentUseCase {
	return kbbiz.NewDocumentUseCase(repo, files, index, proc, client, pool, kbbiz.DocumentConfig{
		MaxFileSize:       config.Upload.MaxFileSize,
		AllowedExtensions: config.Upload.AllowedExtensions,
	}, log)
}

func provideQAUseCase(index *kbstorage.MilvusIndex, client *ai.Client, config *conf.Config, log *logger.Logger) *kbbiz.QAUseCase {
	return kbbiz.NewQAUseCase(index, client, config.OpenAI.TopK, log)
}

func provideChunkUseCase(config *conf.Config) *kbbiz.ChunkUseCase {
	return kbbiz.NewChunkUseCase(config.Chunking.Options(), config.Chunking.MergeSmallChunks)
}

// HTTP service providers

func provideDocumentService(uc *kbbiz.DocumentUseCase, config *conf.Config, log *logger.Logger) *kbservice.DocumentService {
	return kbservice.NewDocumentService(uc, config.Upload.MaxFileSize, log)
}

func provideChatService(qa *kbbiz.QAUseCase, chunks *kbbiz.ChunkUseCase, log *logger.Logger) *kbservice.ChatService {
	return kbservice.NewChatService(qa, chunks, log)
}

func newApp(
	config *conf.Config,
	log *logger.Logger,
	httpServer *server.HTTPServer,
	pool *workerpool.Pool,
) *App {
	return &App{
		Config:     config,
		Logger:     log,
		HTTPServer: httpServer,
		WorkerPool: pool,
	}
}
