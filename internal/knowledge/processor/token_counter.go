package processor

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter 统计文本 token 数
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter 基于 tiktoken 的 token 计数器
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter 按编码名创建计数器，如 cl100k_base
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding %q: %w", encoding, err)
	}
	return &TiktokenCounter{encoding: enc}, nil
}

// Count 统计 token 数
func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}
