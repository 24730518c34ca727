package milvus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"go.uber.org/zap"
)

// Client Milvus 客户端封装
type Client struct {
	cfg    *Config
	client *milvusclient.Client
	logger *logger.Logger
	mu     sync.RWMutex
	closed bool
}

// New 创建新的 Milvus 客户端
func New(ctx context.Context, cfg *Config, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapError("New", err, "")
	}
	log = logger.OrDefault(log)
	cfg = cfg.withDefaults()

	clientCfg := &milvusclient.ClientConfig{
		Address: cfg.Address,
		DBName:  cfg.Database,
		APIKey:  cfg.APIKey,
	}
	if cfg.Username != "" && cfg.Password != "" {
		clientCfg.Username = cfg.Username
		clientCfg.Password = cfg.Password
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	client, err := milvusclient.New(dialCtx, clientCfg)
	if err != nil {
		return nil, WrapError("New", err, "")
	}

	log.Info("milvus client created",
		zap.String("address", cfg.Address),
		zap.String("database", cfg.Database))

	return &Client{cfg: cfg, client: client, logger: log}, nil
}

// Close 关闭客户端连接
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	c.closed = true
	if c.client == nil {
		return nil
	}
	if err := c.client.Close(ctx); err != nil {
		return WrapError("Close", err, "")
	}
	c.logger.Info("milvus client closed")
	return nil
}

// Ping 通过列出集合检查连接
func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	_, err := c.client.ListCollections(ctx, milvusclient.NewListCollectionOption())
	return WrapError("Ping", err, "")
}

// execWithRetry 执行操作，超时和连接类错误按配置重试
func (c *Client) execWithRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying milvus operation",
				zap.String("operation", op),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", c.cfg.MaxRetries),
				zap.Error(err))

			select {
			case <-ctx.Done():
				return WrapError(op, ctx.Err(), "")
			case <-time.After(c.cfg.RetryDelay):
			}
		}

		err = c.call(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("max retries exceeded: %w", err)
}

// call 为单次请求附加 RequestTimeout
func (c *Client) call(ctx context.Context, fn func(context.Context) error) error {
	if c.cfg.RequestTimeout <= 0 {
		return fn(ctx)
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	return fn(reqCtx)
}
