package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	kbtypes "github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"
)

var (
	licenseOnce sync.Once
	licenseErr  error
)

// SetDocxLicense 设置 unioffice 计量授权，进程内只生效一次
func SetDocxLicense(key string) error {
	if key == "" {
		return nil
	}
	licenseOnce.Do(func() {
		licenseErr = license.SetMeteredKey(key)
	})
	return licenseErr
}

// DOCXLoader Word 文档加载器
type DOCXLoader struct{}

// NewDOCXLoader 创建 Word 文档加载器
func NewDOCXLoader() *DOCXLoader {
	return &DOCXLoader{}
}

// Load 提取段落文本，表格按行输出，单元格之间用制表符分隔
func (l *DOCXLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	data, err := readAll(ctx, reader, "DOCX")
	if err != nil {
		return nil, err
	}

	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX document: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	paragraphs := 0
	for _, para := range doc.Paragraphs() {
		if line := paragraphText(para); line != "" {
			sb.WriteString(line)
			sb.WriteString("\n")
			paragraphs++
		}
	}

	tables := doc.Tables()
	for _, table := range tables {
		sb.WriteString("\n")
		for _, row := range table.Rows() {
			cells := make([]string, 0, len(row.Cells()))
			for _, cell := range row.Cells() {
				parts := make([]string, 0, len(cell.Paragraphs()))
				for _, p := range cell.Paragraphs() {
					if t := paragraphText(p); t != "" {
						parts = append(parts, t)
					}
				}
				cells = append(cells, strings.Join(parts, " "))
			}
			sb.WriteString(strings.Join(cells, "\t"))
			sb.WriteString("\n")
		}
	}

	return &Document{
		Content: strings.TrimSpace(sb.String()),
		Metadata: map[string]interface{}{
			"loader":     "docx",
			"paragraphs": paragraphs,
			"tables":     len(tables),
		},
	}, nil
}

// SupportedTypes 返回支持的文件类型
func (l *DOCXLoader) SupportedTypes() []kbtypes.FileType {
	return []kbtypes.FileType{kbtypes.FileTypeDocx}
}

func paragraphText(p document.Paragraph) string {
	var sb strings.Builder
	for _, run := range p.Runs() {
		sb.WriteString(run.Text())
	}
	return strings.TrimSpace(sb.String())
}
