package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	kbtypes "github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	"github.com/tidwall/gjson"
)

// ErrInvalidJSON 内容不是合法 JSON
var ErrInvalidJSON = errors.New("loader: invalid json")

// JSONLoader JSON 文件加载器
type JSONLoader struct{}

// NewJSONLoader 创建 JSON 加载器
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

// Load 按原始键顺序将 JSON 展开为缩进文本
func (l *JSONLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	content, err := readAll(ctx, reader, "json")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(content) {
		return nil, ErrInvalidJSON
	}

	var sb strings.Builder
	writeJSON(&sb, gjson.ParseBytes(content), 0)

	return &Document{
		Content: strings.TrimRight(sb.String(), "\n"),
		Metadata: map[string]interface{}{
			"loader":        "json",
			"original_size": len(content),
		},
	}, nil
}

// SupportedTypes 返回支持的文件类型
func (l *JSONLoader) SupportedTypes() []kbtypes.FileType {
	return []kbtypes.FileType{kbtypes.FileTypeJson}
}

func writeJSON(sb *strings.Builder, value gjson.Result, depth int) {
	indent := strings.Repeat("  ", depth)
	switch {
	case value.IsObject():
		value.ForEach(func(key, child gjson.Result) bool {
			writeEntry(sb, indent, key.String(), child, depth)
			return true
		})
	case value.IsArray():
		i := 0
		value.ForEach(func(_, child gjson.Result) bool {
			writeEntry(sb, indent, fmt.Sprintf("[%d]", i), child, depth)
			i++
			return true
		})
	default:
		sb.WriteString(indent)
		sb.WriteString(value.String())
		sb.WriteString("\n")
	}
}

func writeEntry(sb *strings.Builder, indent, label string, child gjson.Result, depth int) {
	sb.WriteString(indent)
	sb.WriteString(label)
	if child.IsObject() || child.IsArray() {
		sb.WriteString(":\n")
		writeJSON(sb, child, depth+1)
		return
	}
	sb.WriteString(": ")
	sb.WriteString(child.String())
	sb.WriteString("\n")
}
