package embedding

import (
	"context"
	"errors"
)

// ErrEmbeddingMismatch 返回的向量数量或维度与请求不一致
var ErrEmbeddingMismatch = errors.New("embedding: response does not match request")

// Embedder 文本向量化接口
type Embedder interface {
	// Embed 对单个文本生成向量
	Embed(ctx context.Context, text string) ([]float32, error)

	// BatchEmbed 批量生成向量，结果与输入一一对应
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension 返回向量维度
	Dimension() int

	// Model 返回模型名称
	Model() string
}
