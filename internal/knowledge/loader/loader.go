package loader

import (
	"context"
	"errors"
	"fmt"
	"io"

	kbtypes "github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
)

// ErrUnsupportedFileType 没有对应的加载器
var ErrUnsupportedFileType = errors.New("loader: unsupported file type")

// Loader 文档加载器接口
type Loader interface {
	// Load 加载文档内容
	Load(ctx context.Context, reader io.Reader) (*Document, error)

	// SupportedTypes 返回支持的文件类型
	SupportedTypes() []kbtypes.FileType
}

// Document 加载后的文档
type Document struct {
	Content  string                 // 文档全部文本
	Pages    []string               // 分页来源（PDF）的逐页文本，其他类型为空
	Metadata map[string]interface{} // 文档元数据
}

// Paginated 是否按页提供了文本
func (d *Document) Paginated() bool {
	return len(d.Pages) > 0
}

// readAll 读取全部内容，ctx 已取消时不读取
func readAll(ctx context.Context, r io.Reader, kind string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s content: %w", kind, err)
	}
	return data, nil
}
