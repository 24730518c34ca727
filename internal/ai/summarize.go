package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyText 待摘要文本为空
var ErrEmptyText = errors.New("ai: text is empty")

const summarySystemPrompt = "You summarize documents. Write a concise summary of the text in " +
	"the same language as the text, at most five sentences. Do not add information that is not in the text."

// SummaryResult 摘要结果
type SummaryResult struct {
	Summary      string `json:"summary"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	Usage        *Usage `json:"usage,omitempty"`
}

// Summarize 生成文档摘要，只取前 SummaryMaxInput 个字符
func (c *Client) Summarize(ctx context.Context, text string) (*SummaryResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	text = headRunes(text, c.cfg.SummaryMaxInput)

	res, err := c.complete(ctx, "summarize", c.cfg.SummaryModel, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: text},
	})
	if err != nil {
		return nil, err
	}

	return &SummaryResult{
		Summary:      strings.TrimSpace(res.content),
		Model:        res.model,
		FinishReason: res.finishReason,
		Usage:        res.usage,
	}, nil
}

func headRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
