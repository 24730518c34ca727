package data

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/biz"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/database"
)

// DocumentPO 文档数据库模型
type DocumentPO struct {
	ID           string    `gorm:"type:uuid;primarykey"`
	FileName     string    `gorm:"column:filename;size:255;not null"`
	FileType     string    `gorm:"column:file_type;size:50;not null;index:idx_doc_file_type"`
	FileSize     int64     `gorm:"column:file_size;not null"`
	FileHash     string    `gorm:"column:file_hash;size:64;not null;index:idx_doc_file_hash"`
	ObjectKey    string    `gorm:"column:object_key;size:500"`
	Status       string    `gorm:"column:status;size:50;not null;index:idx_doc_status;default:'pending'"`
	ErrorMessage string    `gorm:"column:error_message;type:text"`
	ChunkCount   int       `gorm:"column:chunk_count;not null;default:0"`
	TokenCount   int       `gorm:"column:token_count;not null;default:0"`
	PageCount    int       `gorm:"column:page_count;not null;default:0"`
	Summary      string    `gorm:"column:summary;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (DocumentPO) TableName() string {
	return "documents"
}

// DocumentRepo 文档仓储实现
type DocumentRepo struct {
	db *database.DB
}

var _ biz.DocumentRepo = (*DocumentRepo)(nil)

// NewDocumentRepo 创建文档仓储
func NewDocumentRepo(db *database.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Migrate 创建或更新 documents 表
func (r *DocumentRepo) Migrate() error {
	return r.db.AutoMigrate(&DocumentPO{})
}

// Create 创建文档
func (r *DocumentRepo) Create(ctx context.Context, doc *types.Document) error {
	if err := r.db.WithContext(ctx).Create(toPO(doc)).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取文档
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*types.Document, error) {
	var po DocumentPO
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return toDomain(&po), nil
}

// List 分页列出文档，按创建时间倒序，status 为空时不过滤
func (r *DocumentRepo) List(ctx context.Context, req *types.ListDocumentsRequest) ([]*types.Document, int64, error) {
	page, size := biz.NormalizePage(req.Page, req.Size)

	query := r.db.WithContext(ctx).Model(&DocumentPO{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	var pos []DocumentPO
	err := query.Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&pos).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	docs := make([]*types.Document, len(pos))
	for i := range pos {
		docs[i] = toDomain(&pos[i])
	}
	return docs, total, nil
}

// Update 保存文档全部字段，保留原始创建时间
func (r *DocumentRepo) Update(ctx context.Context, doc *types.Document) error {
	po := toPO(doc)
	po.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Save(po).Error; err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	doc.UpdatedAt = po.UpdatedAt
	return nil
}

// UpdateStatus 更新文档状态
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id string, status types.DocumentStatus, errorMsg string) error {
	updates := map[string]interface{}{
		"status":        status.String(),
		"error_message": sanitizeUTF8(errorMsg),
		"updated_at":    time.Now(),
	}

	result := r.db.WithContext(ctx).Model(&DocumentPO{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update document status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrDocumentNotFound
	}
	return nil
}

// Delete 删除文档
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&DocumentPO{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// sanitizeUTF8 PostgreSQL 拒绝非法 UTF-8 字节
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, " ")
}

func toPO(doc *types.Document) *DocumentPO {
	return &DocumentPO{
		ID:           doc.ID,
		FileName:     sanitizeUTF8(doc.Filename),
		FileType:     doc.FileType.String(),
		FileSize:     doc.FileSize,
		FileHash:     doc.FileHash,
		ObjectKey:    doc.ObjectKey,
		Status:       doc.Status.String(),
		ErrorMessage: sanitizeUTF8(doc.ErrorMessage),
		ChunkCount:   doc.ChunkCount,
		TokenCount:   doc.TokenCount,
		PageCount:    doc.PageCount,
		Summary:      sanitizeUTF8(doc.Summary),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

// toDomain 转换为领域模型
func toDomain(po *DocumentPO) *types.Document {
	return &types.Document{
		ID:           po.ID,
		Filename:     po.FileName,
		FileType:     types.FileType(po.FileType),
		FileSize:     po.FileSize,
		FileHash:     po.FileHash,
		ObjectKey:    po.ObjectKey,
		Status:       types.DocumentStatus(po.Status),
		ErrorMessage: po.ErrorMessage,
		ChunkCount:   po.ChunkCount,
		TokenCount:   po.TokenCount,
		PageCount:    po.PageCount,
		Summary:      po.Summary,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}
