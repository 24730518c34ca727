package biz

import "errors"

// Document 相关错误
var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrDocumentEmpty      = errors.New("document is empty")
	ErrNoContentExtracted = errors.New("no content extracted")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// NormalizePage 将页码和页大小限制在合法范围
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
