package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/chunker"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/loader"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// DocumentLoader 根据文件类型读取文档
type DocumentLoader interface {
	Load(ctx context.Context, fileType types.FileType, r io.Reader) (*loader.Document, error)
}

// Options 处理器选项
type Options struct {
	MergeSmallChunks bool         // 分块后合并过小的相邻分块
	Counter          TokenCounter // 为 nil 时不统计 token
}

// Result 单个文档的处理结果
type Result struct {
	Text       string
	Chunks     []*types.DocumentChunk
	PageCount  int
	CharCount  int
	TokenCount int
}

// DocumentProcessor 文档处理器：加载、分块、合并、统计
type DocumentProcessor struct {
	loader  DocumentLoader
	chunker *chunker.Chunker
	opts    Options
	logger  *logger.Logger
}

// NewDocumentProcessor 创建文档处理器
func NewDocumentProcessor(l DocumentLoader, c *chunker.Chunker, opts Options, log *logger.Logger) *DocumentProcessor {
	return &DocumentProcessor{
		loader:  l,
		chunker: c,
		opts:    opts,
		logger:  logger.OrDefault(log).Named("processor"),
	}
}

// Process 处理上传的文件内容。文本为空不算错误，结果中没有分块
func (p *DocumentProcessor) Process(ctx context.Context, filename string, fileType types.FileType, data []byte) (*Result, error) {
	doc, err := p.loader.Load(ctx, fileType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}

	var chunks []*types.DocumentChunk
	pageCount := 0
	if doc.Paginated() {
		pageCount = len(doc.Pages)
		chunks = p.chunker.ChunkByPages(doc.Pages, filename)
	} else {
		chunks = p.chunker.Chunk(doc.Content, filename)
	}

	before := len(chunks)
	if p.opts.MergeSmallChunks {
		chunks = chunker.MergeSmallChunks(chunks, p.chunker.Options().MinChunkSize)
	}

	result := &Result{
		Text:      doc.Content,
		Chunks:    chunks,
		PageCount: pageCount,
		CharCount: utf8.RuneCountInString(doc.Content),
	}
	if p.opts.Counter != nil {
		for _, c := range chunks {
			c.Metadata.TokenCount = p.opts.Counter.Count(c.Content)
			result.TokenCount += c.Metadata.TokenCount
		}
	}

	p.logger.Info("document processed",
		zap.String("filename", filename),
		zap.String("file_type", fileType.String()),
		zap.Int("pages", pageCount),
		zap.Int("chars", result.CharCount),
		zap.Int("chunks", len(chunks)),
		zap.Int("merged", before-len(chunks)),
		zap.Int("tokens", result.TokenCount))

	return result, nil
}
