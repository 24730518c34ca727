package milvus

import (
	"context"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"go.uber.org/zap"
)

// SearchRequest 单向量检索请求
type SearchRequest struct {
	Collection   string
	VectorField  string
	Vector       []float32
	TopK         int
	OutputFields []string
	Filter       string
}

// Hit 检索命中，Fields 只包含请求的输出字段
type Hit struct {
	ID     interface{}
	Score  float32
	Fields map[string]interface{}
}

// Insert 按列插入数据，返回插入条数
func (c *Client) Insert(ctx context.Context, collectionName string, cols ...column.Column) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return 0, ErrClientClosed
	}
	if collectionName == "" {
		return 0, ErrInvalidCollectionName
	}
	if len(cols) == 0 {
		return 0, ErrInvalidData
	}

	opt := milvusclient.NewColumnBasedInsertOption(collectionName, cols...)

	var result milvusclient.InsertResult
	err := c.execWithRetry(ctx, "Insert", func(ctx context.Context) error {
		var err error
		result, err = c.client.Insert(ctx, opt)
		return err
	})
	if err != nil {
		c.logger.Error("failed to insert data",
			zap.String("collection", collectionName),
			zap.Error(err))
		return 0, WrapError("Insert", err, collectionName)
	}

	c.logger.Debug("data inserted",
		zap.String("collection", collectionName),
		zap.Int64("count", result.InsertCount))
	return result.InsertCount, nil
}

// Delete 按表达式删除数据
func (c *Client) Delete(ctx context.Context, collectionName, expr string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	if collectionName == "" {
		return ErrInvalidCollectionName
	}
	if expr == "" {
		return ErrInvalidExpression
	}

	opt := milvusclient.NewDeleteOption(collectionName).WithExpr(expr)
	err := c.execWithRetry(ctx, "Delete", func(ctx context.Context) error {
		_, err := c.client.Delete(ctx, opt)
		return err
	})
	if err != nil {
		c.logger.Error("failed to delete data",
			zap.String("collection", collectionName),
			zap.String("expression", expr),
			zap.Error(err))
		return WrapError("Delete", err, collectionName)
	}
	return nil
}

// Flush 将新写入的数据落盘
func (c *Client) Flush(ctx context.Context, collectionName string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	if collectionName == "" {
		return ErrInvalidCollectionName
	}

	err := c.execWithRetry(ctx, "Flush", func(ctx context.Context) error {
		task, err := c.client.Flush(ctx, milvusclient.NewFlushOption(collectionName))
		if err != nil {
			return err
		}
		return task.Await(ctx)
	})
	return WrapError("Flush", err, collectionName)
}

// Search 单向量检索
func (c *Client) Search(ctx context.Context, req *SearchRequest) ([]Hit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if req == nil || req.Collection == "" {
		return nil, ErrInvalidCollectionName
	}
	if len(req.Vector) == 0 || req.TopK <= 0 {
		return nil, ErrInvalidData
	}

	opt := milvusclient.NewSearchOption(req.Collection, req.TopK, []entity.Vector{entity.FloatVector(req.Vector)}).
		WithANNSField(req.VectorField)
	if len(req.OutputFields) > 0 {
		opt.WithOutputFields(req.OutputFields...)
	}
	if req.Filter != "" {
		opt.WithFilter(req.Filter)
	}

	var resultSets []milvusclient.ResultSet
	err := c.execWithRetry(ctx, "Search", func(ctx context.Context) error {
		var err error
		resultSets, err = c.client.Search(ctx, opt)
		return err
	})
	if err != nil {
		c.logger.Error("failed to search",
			zap.String("collection", req.Collection),
			zap.Error(err))
		return nil, WrapError("Search", err, req.Collection)
	}
	if len(resultSets) == 0 {
		return []Hit{}, nil
	}

	rs := resultSets[0]
	hits := make([]Hit, 0, rs.ResultCount)
	for j := 0; j < rs.ResultCount; j++ {
		hit := Hit{Fields: make(map[string]interface{}, len(req.OutputFields))}
		if rs.IDs != nil {
			hit.ID, _ = rs.IDs.Get(j)
		}
		if j < len(rs.Scores) {
			hit.Score = rs.Scores[j]
		}
		for _, name := range req.OutputFields {
			col := rs.GetColumn(name)
			if col == nil {
				continue
			}
			if v, err := col.Get(j); err == nil {
				hit.Fields[name] = v
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
