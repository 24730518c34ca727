package loader

import (
	"context"
	"html"
	"io"
	"regexp"
	"strings"

	kbtypes "github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	"github.com/russross/blackfriday/v2"
)

var (
	reScriptStyle  = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	reLineBreak    = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</li>|</tr>|</pre>`)
	reHeadingEnd   = regexp.MustCompile(`(?i)</h[1-6]>`)
	reTag          = regexp.MustCompile(`<[^>]+>`)
	reMultiNewline = regexp.MustCompile(`\n{3,}`)
)

// MarkdownLoader Markdown 加载器，先渲染为 HTML 再去掉标签
type MarkdownLoader struct{}

// NewMarkdownLoader 创建 Markdown 加载器
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{}
}

// Load 加载 Markdown 内容
func (l *MarkdownLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	content, err := readAll(ctx, reader, "markdown")
	if err != nil {
		return nil, err
	}

	rendered := blackfriday.Run(content, blackfriday.WithExtensions(blackfriday.CommonExtensions))

	return &Document{
		Content: htmlToPlainText(string(rendered)),
		Metadata: map[string]interface{}{
			"loader":          "markdown",
			"original_format": "markdown",
		},
	}, nil
}

// SupportedTypes 返回支持的文件类型
func (l *MarkdownLoader) SupportedTypes() []kbtypes.FileType {
	return []kbtypes.FileType{kbtypes.FileTypeMd}
}

// htmlToPlainText 去掉标签并保留段落结构
func htmlToPlainText(s string) string {
	s = reScriptStyle.ReplaceAllString(s, "")
	s = reLineBreak.ReplaceAllString(s, "\n")
	s = reHeadingEnd.ReplaceAllString(s, "\n\n")
	s = reTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(kept) > 0 {
				kept = append(kept, "")
			}
			blank = true
			continue
		}
		kept = append(kept, line)
		blank = false
	}

	out := strings.Join(kept, "\n")
	out = reMultiNewline.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
