package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/embedding"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/milvus"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"go.uber.org/zap"
)

// 集合字段
const (
	fieldID         = "id"
	fieldDocumentID = "document_id"
	fieldFilename   = "filename"
	fieldPage       = "page"
	fieldChunkIndex = "chunk_index"
	fieldContent    = "content"
	fieldVector     = "vector"

	idMaxLength       = 64
	filenameMaxLength = 512
	contentMaxLength  = 65535 // VarChar 上限（字节）

	defaultIndexBatch = 64
)

var outputFields = []string{fieldDocumentID, fieldFilename, fieldPage, fieldChunkIndex, fieldContent}

// VectorClient Milvus 操作，*milvus.Client 实现该接口
type VectorClient interface {
	HasCollection(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, schema *entity.Schema, indexes ...milvus.IndexSpec) error
	Insert(ctx context.Context, name string, cols ...column.Column) (int64, error)
	Delete(ctx context.Context, name, expr string) error
	Flush(ctx context.Context, name string) error
	Search(ctx context.Context, req *milvus.SearchRequest) ([]milvus.Hit, error)
}

var _ VectorClient = (*milvus.Client)(nil)

// MilvusIndexConfig 分块集合配置
type MilvusIndexConfig struct {
	Collection string
	IndexType  milvus.IndexType
	MetricType milvus.MetricType
	BatchSize  int // 每批向量化并写入的分块数
}

// MilvusIndex 基于 Milvus 的分块索引，同时实现 Indexer 和 Searcher
type MilvusIndex struct {
	client   VectorClient
	embedder embedding.Embedder
	cfg      MilvusIndexConfig
	logger   *logger.Logger

	mu    sync.Mutex
	ready bool
}

// NewMilvusIndex 创建 Milvus 分块索引
func NewMilvusIndex(client VectorClient, embedder embedding.Embedder, cfg MilvusIndexConfig, lgr *logger.Logger) *MilvusIndex {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultIndexBatch
	}
	if cfg.MetricType == "" {
		cfg.MetricType = milvus.MetricTypeCosine
	}
	return &MilvusIndex{
		client:   client,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger.OrDefault(lgr).Named("milvus_index"),
	}
}

// EnsureCollection 集合不存在时创建集合、向量索引并加载
func (m *MilvusIndex) EnsureCollection(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		return nil
	}

	exists, err := m.client.HasCollection(ctx, m.cfg.Collection)
	if err != nil {
		return err
	}
	if !exists {
		spec := milvus.IndexSpec{FieldName: fieldVector, IndexType: m.cfg.IndexType, Metric: m.cfg.MetricType}
		if err := m.client.CreateCollection(ctx, m.schema(), spec); err != nil {
			return err
		}
		m.logger.Info("chunk collection created",
			zap.String("collection", m.cfg.Collection),
			zap.Int("dimension", m.embedder.Dimension()))
	}
	m.ready = true
	return nil
}

func (m *MilvusIndex) schema() *entity.Schema {
	return &entity.Schema{
		CollectionName: m.cfg.Collection,
		Description:    "document chunks",
		Fields: []*entity.Field{
			entity.NewField().WithName(fieldID).WithDataType(entity.FieldTypeVarChar).
				WithIsPrimaryKey(true).WithMaxLength(idMaxLength),
			entity.NewField().WithName(fieldDocumentID).WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(idMaxLength),
			entity.NewField().WithName(fieldFilename).WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(filenameMaxLength),
			entity.NewField().WithName(fieldPage).WithDataType(entity.FieldTypeInt64),
			entity.NewField().WithName(fieldChunkIndex).WithDataType(entity.FieldTypeInt64),
			entity.NewField().WithName(fieldContent).WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(contentMaxLength),
			entity.NewField().WithName(fieldVector).WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(m.embedder.Dimension())),
		},
	}
}

// Index 分批向量化并写入
func (m *MilvusIndex) Index(ctx context.Context, documentID string, chunks []*types.DocumentChunk) (*IndexResult, error) {
	result := &IndexResult{}
	if len(chunks) == 0 {
		return result, nil
	}
	if _, err := uuid.Parse(documentID); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDocumentID, documentID)
	}
	if err := m.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	for start := 0; start < len(chunks); start += m.cfg.BatchSize {
		end := start + m.cfg.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		if err := m.insertBatch(ctx, documentID, batch); err != nil {
			m.logger.Warn("chunk batch failed",
				zap.String("document_id", documentID),
				zap.Int("offset", start),
				zap.Int("size", len(batch)),
				zap.Error(err))
			result.Failed += len(batch)
			result.Errors = append(result.Errors, fmt.Errorf("chunks %d-%d: %w", start, end-1, err))
			continue
		}
		result.Indexed += len(batch)
	}

	if result.Indexed == 0 {
		return result, fmt.Errorf("%w: %v", ErrIndexFailed, result.Errors[0])
	}
	if err := m.client.Flush(ctx, m.cfg.Collection); err != nil {
		m.logger.Warn("flush after insert failed", zap.Error(err))
	}

	m.logger.Info("document indexed",
		zap.String("document_id", documentID),
		zap.Int("indexed", result.Indexed),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (m *MilvusIndex) insertBatch(ctx context.Context, documentID string, batch []*types.DocumentChunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Content
	}
	vectors, err := m.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", embedding.ErrEmbeddingMismatch, len(vectors), len(batch))
	}

	n := len(batch)
	ids := make([]string, n)
	docIDs := make([]string, n)
	filenames := make([]string, n)
	pages := make([]int64, n)
	indexes := make([]int64, n)
	contents := make([]string, n)
	for i, c := range batch {
		ids[i] = ChunkKey(documentID, c.ID)
		docIDs[i] = documentID
		filenames[i] = truncateUTF8(c.Metadata.Filename, filenameMaxLength)
		pages[i] = int64(c.Metadata.Page)
		indexes[i] = int64(c.Metadata.ChunkIndex)
		contents[i] = truncateUTF8(c.Content, contentMaxLength)
	}

	_, err = m.client.Insert(ctx, m.cfg.Collection,
		column.NewColumnVarChar(fieldID, ids),
		column.NewColumnVarChar(fieldDocumentID, docIDs),
		column.NewColumnVarChar(fieldFilename, filenames),
		column.NewColumnInt64(fieldPage, pages),
		column.NewColumnInt64(fieldChunkIndex, indexes),
		column.NewColumnVarChar(fieldContent, contents),
		column.NewColumnFloatVector(fieldVector, m.embedder.Dimension(), vectors),
	)
	return err
}

// DeleteDocument 删除文档的全部分块
func (m *MilvusIndex) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := uuid.Parse(documentID); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDocumentID, documentID)
	}
	if err := m.EnsureCollection(ctx); err != nil {
		return err
	}
	return m.client.Delete(ctx, m.cfg.Collection, documentFilter(documentID))
}

// Search 向量化问题并检索最相近的分块
func (m *MilvusIndex) Search(ctx context.Context, query string, topK int) ([]*types.Passage, error) {
	if topK <= 0 {
		topK = 5
	}
	if err := m.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	vector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := m.client.Search(ctx, &milvus.SearchRequest{
		Collection:   m.cfg.Collection,
		VectorField:  fieldVector,
		Vector:       vector,
		TopK:         topK,
		OutputFields: outputFields,
	})
	if err != nil {
		return nil, err
	}

	passages := make([]*types.Passage, 0, len(hits))
	for _, h := range hits {
		p := decodeHit(h)
		if p.Content == "" {
			continue
		}
		passages = append(passages, p)
	}
	return passages, nil
}

// ChunkKey 分块在索引中的主键：sha256(documentID:chunkID) 的前 32 位十六进制
func ChunkKey(documentID, chunkID string) string {
	sum := sha256.Sum256([]byte(documentID + ":" + chunkID))
	return hex.EncodeToString(sum[:])[:32]
}

func documentFilter(documentID string) string {
	return fmt.Sprintf("%s == %q", fieldDocumentID, documentID)
}

// decodeHit 缺失或类型不符的字段保持零值
func decodeHit(h milvus.Hit) *types.Passage {
	p := &types.Passage{Score: h.Score}
	if id, ok := h.ID.(string); ok {
		p.ChunkID = id
	}
	p.DocumentID = stringField(h.Fields, fieldDocumentID)
	p.Filename = stringField(h.Fields, fieldFilename)
	p.Content = stringField(h.Fields, fieldContent)
	p.Page = intField(h.Fields, fieldPage)
	p.ChunkIndex = intField(h.Fields, fieldChunkIndex)
	return p
}

func stringField(fields map[string]interface{}, name string) string {
	if s, ok := fields[name].(string); ok {
		return s
	}
	return ""
}

func intField(fields map[string]interface{}, name string) int {
	switch v := fields[name].(type) {
	case int64:
		return int(v)
	case int32:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// truncateUTF8 按字节截断且不切断多字节字符
func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
