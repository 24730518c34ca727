package loader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
	kbtypes "github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
)

// PDFLoader PDF 加载器（go-fitz/MuPDF），按页返回文本
type PDFLoader struct{}

// NewPDFLoader 创建 PDF 加载器
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

// Load 逐页提取文本。无法提取的页面保留为空字符串，保证页码与原文一致
func (l *PDFLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	data, err := readAll(ctx, reader, "PDF")
	if err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	pages := make([]string, numPages)
	skipped := 0
	for i := 0; i < numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.Text(i)
		if err != nil {
			skipped++
			continue
		}
		pages[i] = strings.TrimSpace(text)
	}

	return &Document{
		Content: joinPages(pages),
		Pages:   pages,
		Metadata: map[string]interface{}{
			"loader":        "pdf",
			"page_count":    numPages,
			"skipped_pages": skipped,
		},
	}, nil
}

// SupportedTypes 返回支持的文件类型
func (l *PDFLoader) SupportedTypes() []kbtypes.FileType {
	return []kbtypes.FileType{kbtypes.FileTypePdf}
}

// joinPages 拼接非空页面，页面之间空一行
func joinPages(pages []string) string {
	nonEmpty := make([]string, 0, len(pages))
	for _, p := range pages {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
