package types

import (
	"path/filepath"
	"strings"
)

// DocumentStatus 文档处理状态
type DocumentStatus string

const (
	// DocumentStatusPending 待处理
	DocumentStatusPending DocumentStatus = "pending"
	// DocumentStatusProcessing 处理中
	DocumentStatusProcessing DocumentStatus = "processing"
	// DocumentStatusCompleted 处理完成
	DocumentStatusCompleted DocumentStatus = "completed"
	// DocumentStatusFailed 处理失败
	DocumentStatusFailed DocumentStatus = "failed"
)

// Valid 检查状态是否有效
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusProcessing, DocumentStatusCompleted, DocumentStatusFailed:
		return true
	}
	return false
}

// String 返回字符串表示
func (s DocumentStatus) String() string {
	return string(s)
}

// FileType 文件类型
type FileType string

const (
	FileTypeTxt     FileType = "txt"
	FileTypePdf     FileType = "pdf"
	FileTypeDocx    FileType = "docx"
	FileTypeMd      FileType = "md"
	FileTypeJson    FileType = "json"
	FileTypeUnknown FileType = ""
)

// Valid 检查文件类型是否有效
func (ft FileType) Valid() bool {
	switch ft {
	case FileTypeTxt, FileTypePdf, FileTypeDocx, FileTypeMd, FileTypeJson:
		return true
	}
	return false
}

// String 返回字符串表示
func (ft FileType) String() string {
	return string(ft)
}

var extFileTypes = map[string]FileType{
	".txt":      FileTypeTxt,
	".text":     FileTypeTxt,
	".pdf":      FileTypePdf,
	".docx":     FileTypeDocx,
	".md":       FileTypeMd,
	".markdown": FileTypeMd,
	".json":     FileTypeJson,
}

// FileTypeFromFilename 根据文件扩展名推断文件类型，无法识别时返回 FileTypeUnknown
func FileTypeFromFilename(filename string) FileType {
	ext := strings.ToLower(filepath.Ext(filename))
	if ft, ok := extFileTypes[ext]; ok {
		return ft
	}
	return FileTypeUnknown
}
