package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/chunker"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/database"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/milvus"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/minio"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/redis"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/workerpool"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，如 DOC_QA_OPENAI_API_KEY 覆盖 openai.api_key
const EnvPrefix = "DOC_QA"

// Config 应用配置
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Log       logger.Config     `mapstructure:"log"`
	Database  database.Config   `mapstructure:"database"`
	Redis     redis.Config      `mapstructure:"redis"`
	MinIO     minio.Config      `mapstructure:"minio"`
	Milvus    MilvusConfig      `mapstructure:"milvus"`
	OpenAI    OpenAIConfig      `mapstructure:"openai"`
	Chunking  ChunkingConfig    `mapstructure:"chunking"`
	Upload    UploadConfig      `mapstructure:"upload"`
	Worker    workerpool.Config `mapstructure:"worker"`
	Docx      DocxConfig        `mapstructure:"docx"`
	RateLimit RateLimitConfig   `mapstructure:"rate_limit"`
}

// NeedRedis 开启向量缓存或限流时需要 redis
func (c *Config) NeedRedis() bool {
	return c.OpenAI.EmbeddingCache || c.RateLimit.Enabled
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // gin 模式: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MilvusConfig 连接配置加上分块集合的参数
type MilvusConfig struct {
	milvus.Config `mapstructure:",squash"`

	Collection string `mapstructure:"collection"`
	IndexType  string `mapstructure:"index_type"`
	MetricType string `mapstructure:"metric_type"`
	BatchSize  int    `mapstructure:"batch_size"` // 每批写入的分块数
}

// OpenAIConfig OpenAI 兼容接口配置
type OpenAIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`

	EmbeddingModel     string        `mapstructure:"embedding_model"`
	EmbeddingDimension int           `mapstructure:"embedding_dimension"`
	EmbeddingCache     bool          `mapstructure:"embedding_cache"` // 使用 redis 缓存向量
	EmbeddingCacheTTL  time.Duration `mapstructure:"embedding_cache_ttl"`

	SummaryModel    string  `mapstructure:"summary_model"`
	SummaryMaxInput int     `mapstructure:"summary_max_input"` // 送去摘要的最大字符数
	ChatModel       string  `mapstructure:"chat_model"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	Temperature     float32 `mapstructure:"temperature"`
	TopK            int     `mapstructure:"top_k"` // 问答默认召回段落数
}

// ChunkingConfig 分块配置
type ChunkingConfig struct {
	ChunkSize        int    `mapstructure:"chunk_size"`
	ChunkOverlap     int    `mapstructure:"chunk_overlap"`
	MinChunkSize     int    `mapstructure:"min_chunk_size"`
	MergeSmallChunks bool   `mapstructure:"merge_small_chunks"`
	TokenEncoding    string `mapstructure:"token_encoding"` // tiktoken 编码，空值表示不统计 token
}

// Options 转换为分块参数
func (c *ChunkingConfig) Options() *chunker.Options {
	return &chunker.Options{
		ChunkSize:    c.ChunkSize,
		ChunkOverlap: c.ChunkOverlap,
		MinChunkSize: c.MinChunkSize,
	}
}

// UploadConfig 上传限制
type UploadConfig struct {
	MaxFileSize       int64    `mapstructure:"max_file_size"` // 字节
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// RateLimitConfig 上传和问答接口的限流，计数存放在 redis
type RateLimitConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests int           `mapstructure:"max_requests"` // 每个客户端窗口内的请求数
	Window      time.Duration `mapstructure:"window"`
}

// DocxConfig unioffice 授权
type DocxConfig struct {
	LicenseKey string `mapstructure:"license_key"`
}

// Load 读取配置文件，path 为空时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate 校验各段配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port %d out of range", c.Server.Port)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.NeedRedis() {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.MaxRequests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("rate_limit: max_requests and window must be positive")
	}
	if err := c.MinIO.Validate(); err != nil {
		return err
	}
	if err := c.Milvus.Validate(); err != nil {
		return err
	}
	if c.Milvus.Collection == "" {
		return errors.New("milvus: collection is required")
	}
	if _, err := milvus.ParseIndexType(c.Milvus.IndexType); err != nil {
		return err
	}
	if c.OpenAI.EmbeddingDimension <= 0 {
		return errors.New("openai: embedding_dimension must be positive")
	}
	if err := c.Chunking.Options().Validate(); err != nil {
		return err
	}
	if c.Upload.MaxFileSize <= 0 {
		return errors.New("upload: max_file_size must be positive")
	}
	if err := c.Worker.Validate(); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	lc := logger.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.format", lc.Format)
	v.SetDefault("log.output", lc.Output)
	v.SetDefault("log.enable_caller", lc.EnableCaller)
	v.SetDefault("log.enable_stacktrace", lc.EnableStacktrace)
	v.SetDefault("log.file.filename", lc.File.Filename)
	v.SetDefault("log.file.max_size", lc.File.MaxSize)
	v.SetDefault("log.file.max_age", lc.File.MaxAge)
	v.SetDefault("log.file.max_backups", lc.File.MaxBackups)
	v.SetDefault("log.file.compress", lc.File.Compress)

	dc := database.DefaultConfig()
	v.SetDefault("database.host", dc.Host)
	v.SetDefault("database.port", dc.Port)
	v.SetDefault("database.user", dc.User)
	v.SetDefault("database.password", dc.Password)
	v.SetDefault("database.dbname", dc.DBName)
	v.SetDefault("database.sslmode", dc.SSLMode)
	v.SetDefault("database.timezone", dc.Timezone)
	v.SetDefault("database.max_idle_conns", dc.MaxIdleConns)
	v.SetDefault("database.max_open_conns", dc.MaxOpenConns)
	v.SetDefault("database.conn_max_lifetime", dc.ConnMaxLifetime)
	v.SetDefault("database.log_level", dc.LogLevel)
	v.SetDefault("database.slow_threshold", dc.SlowThreshold)
	v.SetDefault("database.auto_migrate", dc.AutoMigrate)

	rc := redis.DefaultConfig()
	v.SetDefault("redis.mode", string(rc.Mode))
	v.SetDefault("redis.addrs", rc.Addrs)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", rc.DB)
	v.SetDefault("redis.pool_size", rc.PoolSize)
	v.SetDefault("redis.min_idle_conns", rc.MinIdleConns)
	v.SetDefault("redis.dial_timeout", rc.DialTimeout)
	v.SetDefault("redis.read_timeout", rc.ReadTimeout)
	v.SetDefault("redis.write_timeout", rc.WriteTimeout)
	v.SetDefault("redis.max_retries", rc.MaxRetries)

	mc := minio.DefaultConfig()
	v.SetDefault("minio.endpoint", mc.Endpoint)
	v.SetDefault("minio.access_key_id", mc.AccessKeyID)
	v.SetDefault("minio.secret_access_key", mc.SecretAccessKey)
	v.SetDefault("minio.use_ssl", mc.UseSSL)
	v.SetDefault("minio.bucket", mc.Bucket)

	vc := milvus.DefaultConfig()
	v.SetDefault("milvus.address", vc.Address)
	v.SetDefault("milvus.username", "")
	v.SetDefault("milvus.password", "")
	v.SetDefault("milvus.database", vc.Database)
	v.SetDefault("milvus.dial_timeout", vc.DialTimeout)
	v.SetDefault("milvus.request_timeout", vc.RequestTimeout)
	v.SetDefault("milvus.max_retries", vc.MaxRetries)
	v.SetDefault("milvus.retry_delay", vc.RetryDelay)
	v.SetDefault("milvus.collection", "document_chunks")
	v.SetDefault("milvus.index_type", string(milvus.IndexTypeAuto))
	v.SetDefault("milvus.metric_type", string(milvus.MetricTypeCosine))
	v.SetDefault("milvus.batch_size", 64)

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.timeout", 60*time.Second)
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.embedding_dimension", 1536)
	v.SetDefault("openai.embedding_cache", false)
	v.SetDefault("openai.embedding_cache_ttl", 7*24*time.Hour)
	v.SetDefault("openai.summary_model", "gpt-4o-mini")
	v.SetDefault("openai.summary_max_input", 8000)
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 1024)
	v.SetDefault("openai.temperature", 0.2)
	v.SetDefault("openai.top_k", 5)

	v.SetDefault("chunking.chunk_size", chunker.DefaultChunkSize)
	v.SetDefault("chunking.chunk_overlap", chunker.DefaultChunkOverlap)
	v.SetDefault("chunking.min_chunk_size", chunker.DefaultMinChunkSize)
	v.SetDefault("chunking.merge_small_chunks", true)
	v.SetDefault("chunking.token_encoding", "cl100k_base")

	v.SetDefault("upload.max_file_size", 50<<20)
	v.SetDefault("upload.allowed_extensions", []string{".txt", ".text", ".md", ".markdown", ".pdf", ".docx", ".json"})

	wc := workerpool.DefaultConfig()
	v.SetDefault("worker.workers", wc.Workers)
	v.SetDefault("worker.queue_size", wc.QueueSize)

	v.SetDefault("docx.license_key", "")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.max_requests", 30)
	v.SetDefault("rate_limit.window", time.Minute)
}
