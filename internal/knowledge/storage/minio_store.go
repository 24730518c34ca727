package storage

import (
	"context"
	"fmt"

	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	pkgminio "github.com/lk2023060901/doc-qa-backend/internal/pkg/minio"
	"go.uber.org/zap"
)

// ObjectClient MinIO 对象操作，*pkgminio.Client 实现该接口
type ObjectClient interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	RemoveObject(ctx context.Context, key string) error
}

var _ ObjectClient = (*pkgminio.Client)(nil)

// MinIOStore MinIO 文件存储实现，bucket 在首次写入时创建
type MinIOStore struct {
	client ObjectClient
	logger *logger.Logger
}

// NewMinIOStore 创建 MinIO 文件存储
func NewMinIOStore(client ObjectClient, lgr *logger.Logger) *MinIOStore {
	return &MinIOStore{
		client: client,
		logger: logger.OrDefault(lgr),
	}
}

// Save 保存上传文件
func (s *MinIOStore) Save(ctx context.Context, documentID, filename string, data []byte) (string, error) {
	key := ObjectKey(documentID, filename)
	if err := s.client.PutObject(ctx, key, data, contentType(filename, data)); err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	s.logger.Info("file uploaded",
		zap.String("key", key),
		zap.Int("size", len(data)))
	return key, nil
}

// Load 读取文件
func (s *MinIOStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.GetObject(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	return data, nil
}

// Delete 删除文件
func (s *MinIOStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, key); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	s.logger.Info("file deleted", zap.String("key", key))
	return nil
}
