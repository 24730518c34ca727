package milvus

import (
	"context"

	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"go.uber.org/zap"
)

// IndexSpec 建表时需要创建的索引
type IndexSpec struct {
	FieldName string
	IndexType IndexType
	Metric    MetricType
}

// HasCollection 检查 Collection 是否存在
func (c *Client) HasCollection(ctx context.Context, collectionName string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false, ErrClientClosed
	}
	if collectionName == "" {
		return false, ErrInvalidCollectionName
	}

	var exists bool
	err := c.execWithRetry(ctx, "HasCollection", func(ctx context.Context) error {
		var err error
		exists, err = c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(collectionName))
		return err
	})
	if err != nil {
		return false, WrapError("HasCollection", err, collectionName)
	}
	return exists, nil
}

// CreateCollection 创建 Collection，随后建立索引并加载到内存
func (c *Client) CreateCollection(ctx context.Context, schema *entity.Schema, indexes ...IndexSpec) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	if schema == nil || schema.CollectionName == "" {
		return ErrInvalidCollectionName
	}
	name := schema.CollectionName

	idxs := make([]index.Index, len(indexes))
	for i, spec := range indexes {
		idx, err := NewIndex(spec.IndexType, spec.Metric)
		if err != nil {
			return WrapError("CreateCollection", err, name)
		}
		idxs[i] = idx
	}

	err := c.execWithRetry(ctx, "CreateCollection", func(ctx context.Context) error {
		return c.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(name, schema))
	})
	if err != nil {
		return WrapError("CreateCollection", err, name)
	}

	for i, spec := range indexes {
		opt := milvusclient.NewCreateIndexOption(name, spec.FieldName, idxs[i])
		err := c.execWithRetry(ctx, "CreateIndex", func(ctx context.Context) error {
			task, err := c.client.CreateIndex(ctx, opt)
			if err != nil {
				return err
			}
			return task.Await(ctx)
		})
		if err != nil {
			return WrapError("CreateIndex", err, name)
		}
	}

	err = c.execWithRetry(ctx, "LoadCollection", func(ctx context.Context) error {
		task, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(name))
		if err != nil {
			return err
		}
		return task.Await(ctx)
	})
	if err != nil {
		return WrapError("LoadCollection", err, name)
	}

	c.logger.Info("collection created",
		zap.String("collection", name),
		zap.Int("fields", len(schema.Fields)),
		zap.Int("indexes", len(indexes)))
	return nil
}
