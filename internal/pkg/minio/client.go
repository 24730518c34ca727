package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
)

// Client wraps the MinIO client bound to one bucket
type Client struct {
	client *minio.Client
	config *Config
	logger *logger.Logger

	bucketMu    sync.Mutex
	bucketReady bool
}

// NewClient creates a new MinIO client. No request is made until first use.
func NewClient(cfg *Config, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidArgument
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = logger.OrDefault(log).Named("minio")

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	log.Info("minio client initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
		zap.Bool("use_ssl", cfg.UseSSL),
	)

	return &Client{client: mc, config: cfg, logger: log}, nil
}

// Bucket returns the bucket the client writes to
func (c *Client) Bucket() string {
	return c.config.Bucket
}

// EnsureBucket creates the bucket when it does not exist yet. A failed check is retried on the next call.
func (c *Client) EnsureBucket(ctx context.Context) error {
	c.bucketMu.Lock()
	defer c.bucketMu.Unlock()
	if c.bucketReady {
		return nil
	}

	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return wrapError("BucketExists", c.config.Bucket, "", err)
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
			return wrapError("MakeBucket", c.config.Bucket, "", err)
		}
		c.logger.Info("bucket created", zap.String("bucket", c.config.Bucket))
	}

	c.bucketReady = true
	return nil
}

// PutObject uploads data under key
func (c *Client) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if err := c.EnsureBucket(ctx); err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := c.client.PutObject(ctx, c.config.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		c.logger.Error("put object failed", zap.String("key", key), zap.Error(err))
		return wrapError("PutObject", c.config.Bucket, key, err)
	}

	c.logger.Debug("object stored", zap.String("key", key), zap.Int64("size", info.Size))
	return nil
}

// GetObject downloads the object stored under key
func (c *Client) GetObject(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, c.config.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapError("GetObject", c.config.Bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, wrapError("GetObject", c.config.Bucket, key, err)
	}
	return data, nil
}

// RemoveObject deletes the object, a missing object is not an error
func (c *Client) RemoveObject(ctx context.Context, key string) error {
	err := c.client.RemoveObject(ctx, c.config.Bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !IsNotFound(err) {
		return wrapError("RemoveObject", c.config.Bucket, key, err)
	}
	return nil
}

// Exists reports whether an object is stored under key
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.config.Bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, wrapError("StatObject", c.config.Bucket, key, err)
}
