package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	openai "github.com/sashabaranov/go-openai"
)

const answerSystemPrompt = "You answer questions about the user's documents. Use only the numbered " +
	"passages below. Cite passages by their number, for example [2]. If the passages do not contain " +
	"the answer, say that you could not find it in the documents. Answer in the language of the question " +
	"and format the answer as Markdown."

// Message 对话历史中的一条消息
type Message struct {
	Role    string `json:"role"` // user / assistant
	Content string `json:"content"`
}

// GenerateRequest 问答生成请求
type GenerateRequest struct {
	Question string
	History  []Message
	Passages []*types.Passage
}

// GenerationResult 问答生成结果
type GenerationResult struct {
	Answer       string `json:"answer"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	Usage        *Usage `json:"usage,omitempty"`
}

// Generate 基于检索到的段落回答问题
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*GenerationResult, error) {
	if req == nil || strings.TrimSpace(req.Question) == "" {
		return nil, ErrEmptyText
	}

	res, err := c.complete(ctx, "generate", c.cfg.ChatModel, BuildMessages(req))
	if err != nil {
		return nil, err
	}

	return &GenerationResult{
		Answer:       strings.TrimSpace(res.content),
		Model:        res.model,
		FinishReason: res.finishReason,
		Usage:        res.usage,
	}, nil
}

// BuildMessages 组装 system 提示、历史和带编号段落的问题
func BuildMessages(req *GenerateRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: answerSystemPrompt,
	})

	for _, m := range req.History {
		role := openai.ChatMessageRoleUser
		if m.Role == openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	var b strings.Builder
	b.WriteString("Passages:\n\n")
	b.WriteString(FormatPassages(req.Passages))
	b.WriteString("\nQuestion: ")
	b.WriteString(strings.TrimSpace(req.Question))

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: b.String(),
	})
	return messages
}

// FormatPassages 每段格式为 "[n] filename p.X" 加正文，无页码时省略 p.X
func FormatPassages(passages []*types.Passage) string {
	var b strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s", i+1, p.Filename)
		if p.Page > 0 {
			fmt.Fprintf(&b, " p.%d", p.Page)
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(p.Content))
		b.WriteString("\n\n")
	}
	return b.String()
}
