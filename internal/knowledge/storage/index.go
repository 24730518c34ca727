package storage

import (
	"context"
	"errors"

	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
)

var (
	// ErrInvalidDocumentID 文档 ID 不是合法 UUID
	ErrInvalidDocumentID = errors.New("storage: invalid document id")
	// ErrIndexFailed 所有批次都写入失败
	ErrIndexFailed = errors.New("storage: every batch failed to index")
)

// Indexer 将分块写入检索索引
type Indexer interface {
	// Index 写入文档的全部分块。批次之间互相独立，只有全部失败时才返回错误
	Index(ctx context.Context, documentID string, chunks []*types.DocumentChunk) (*IndexResult, error)

	// DeleteDocument 删除文档的全部分块
	DeleteDocument(ctx context.Context, documentID string) error
}

// Searcher 按问题检索相关段落
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]*types.Passage, error)
}

// IndexResult 写入结果
type IndexResult struct {
	Indexed int     // 成功写入的分块数
	Failed  int     // 写入失败的分块数
	Errors  []error // 每个失败批次一个错误
}
