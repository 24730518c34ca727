package types

import (
	"time"
)

// Document 文档业务对象
type Document struct {
	ID       string   `json:"id"`
	Filename string   `json:"filename"`
	FileType FileType `json:"file_type"`
	FileSize int64    `json:"file_size"`
	FileHash string   `json:"file_hash"`

	// 原始文件在对象存储中的位置
	ObjectKey string `json:"object_key,omitempty"`

	// 处理状态
	Status       DocumentStatus `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`

	// 统计信息
	ChunkCount int `json:"chunk_count"`
	TokenCount int `json:"token_count"`
	PageCount  int `json:"page_count"`

	Summary string `json:"summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone 返回文档副本
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}

// ListDocumentsRequest 文档列表查询请求
type ListDocumentsRequest struct {
	Status DocumentStatus `json:"status,omitempty"`
	Page   int            `json:"page"`
	Size   int            `json:"size"`
}

// ListDocumentsResponse 文档列表响应
type ListDocumentsResponse struct {
	Items      []*Document `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Size       int         `json:"size"`
	TotalPages int         `json:"total_pages"`
}
