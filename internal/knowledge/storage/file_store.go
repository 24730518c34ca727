package storage

import (
	"context"
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	pkgminio "github.com/lk2023060901/doc-qa-backend/internal/pkg/minio"
)

const uploadPrefix = "uploads"

// FileStore 原始上传文件存储
type FileStore interface {
	// Save 保存文件，返回对象键
	Save(ctx context.Context, documentID, filename string, data []byte) (string, error)

	// Load 读取文件
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete 删除文件，不存在时不报错
	Delete(ctx context.Context, key string) error
}

// ObjectKey 上传文件的对象键：uploads/{documentID}/{filename}
func ObjectKey(documentID, filename string) string {
	return pkgminio.ObjectKey(uploadPrefix, documentID, filename)
}

// contentType 优先按扩展名推断 MIME 类型，无法识别时按内容嗅探
func contentType(filename string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	return mimetype.Detect(data).String()
}
