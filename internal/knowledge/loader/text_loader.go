package loader

import (
	"context"
	"io"
	"strings"

	kbtypes "github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
)

const utf8BOM = "\ufeff"

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// TextLoader 纯文本加载器
type TextLoader struct{}

func NewTextLoader() *TextLoader { return &TextLoader{} }

// Load 去掉 BOM，统一换行符为 \n，非法 UTF-8 字节替换为 U+FFFD
func (l *TextLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	raw, err := readAll(ctx, reader, "text")
	if err != nil {
		return nil, err
	}

	text := strings.ToValidUTF8(strings.TrimPrefix(string(raw), utf8BOM), "\uFFFD")
	text = lineEndings.Replace(text)

	return &Document{
		Content:  text,
		Metadata: map[string]interface{}{"loader": "text", "bytes": len(raw)},
	}, nil
}

func (l *TextLoader) SupportedTypes() []kbtypes.FileType {
	return []kbtypes.FileType{kbtypes.FileTypeTxt}
}
