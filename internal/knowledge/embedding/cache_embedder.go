package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/redis"
	"go.uber.org/zap"
)

const (
	defaultCacheTTL    = 24 * time.Hour
	defaultCachePrefix = "docqa:embedding:"
)

// CacheEmbedderConfig 缓存配置
type CacheEmbedderConfig struct {
	TTL    time.Duration // 缓存过期时间
	Prefix string        // 缓存键前缀
}

// CacheEmbedder 带 redis 缓存的 Embedder 装饰器。缓存读写失败只记录日志
type CacheEmbedder struct {
	embedder Embedder
	cache    *redis.Client
	ttl      time.Duration
	prefix   string
	logger   *logger.Logger
}

// NewCacheEmbedder 创建带缓存的 Embedder
func NewCacheEmbedder(embedder Embedder, cache *redis.Client, cfg *CacheEmbedderConfig, lgr *logger.Logger) *CacheEmbedder {
	ttl, prefix := defaultCacheTTL, defaultCachePrefix
	if cfg != nil {
		if cfg.TTL > 0 {
			ttl = cfg.TTL
		}
		if cfg.Prefix != "" {
			prefix = cfg.Prefix
		}
	}

	return &CacheEmbedder{
		embedder: embedder,
		cache:    cache,
		ttl:      ttl,
		prefix:   prefix,
		logger:   logger.OrDefault(lgr),
	}
}

// Embed 对单个文本生成向量（带缓存）
func (e *CacheEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// BatchEmbed 先批量查缓存，只为未命中的文本调用底层 Embedder
func (e *CacheEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = e.cacheKey(text)
	}

	results := make([][]float32, len(texts))
	cached, err := e.cache.MGetBytes(ctx, keys...)
	if err != nil {
		e.logger.Warn("embedding cache lookup failed", zap.Error(err))
		cached = nil
	}

	var missIdx []int
	var missTexts []string
	for i := range texts {
		if i < len(cached) && cached[i] != nil {
			var v []float32
			if err := json.Unmarshal(cached[i], &v); err == nil && len(v) == e.Dimension() {
				results[i] = v
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
	}

	e.logger.Debug("embedding cache stats",
		zap.Int("total", len(texts)),
		zap.Int("cache_hits", len(texts)-len(missTexts)),
		zap.Int("cache_misses", len(missTexts)))

	if len(missTexts) == 0 {
		return results, nil
	}

	fresh, err := e.embedder.BatchEmbed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingMismatch, len(fresh), len(missTexts))
	}

	for i, vec := range fresh {
		idx := missIdx[i]
		results[idx] = vec
		e.store(ctx, keys[idx], vec)
	}
	return results, nil
}

// Dimension 返回向量维度
func (e *CacheEmbedder) Dimension() int {
	return e.embedder.Dimension()
}

// Model 返回模型名称
func (e *CacheEmbedder) Model() string {
	return e.embedder.Model()
}

// cacheKey 模型名 + 文本 sha256
func (e *CacheEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s%s:%s", e.prefix, e.Model(), hex.EncodeToString(sum[:]))
}

func (e *CacheEmbedder) store(ctx context.Context, key string, vec []float32) {
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, key, data, e.ttl); err != nil {
		e.logger.Warn("failed to cache embedding", zap.String("cache_key", key), zap.Error(err))
	}
}
