package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Usage token 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Client 摘要与问答模型客户端
type Client struct {
	cfg    Config
	client *openai.Client
	logger *logger.Logger
}

// New 创建模型客户端
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		cfg:    cfg,
		client: openai.NewClientWithConfig(oc),
		logger: logger.OrDefault(log).Named("ai"),
	}, nil
}

// Config 返回配置副本
func (c *Client) Config() Config {
	return c.cfg
}

type completion struct {
	content      string
	model        string
	finishReason string
	usage        *Usage
}

func (c *Client) complete(ctx context.Context, op, model string, messages []openai.ChatCompletionMessage) (*completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		c.logger.Warn("chat completion failed",
			zap.String("op", op),
			zap.String("model", model),
			zap.Error(err))
		return nil, newProviderError(op, model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyChoices)
	}

	choice := resp.Choices[0]
	result := &completion{
		content:      choice.Message.Content,
		model:        resp.Model,
		finishReason: string(choice.FinishReason),
		usage: &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	if result.model == "" {
		result.model = model
	}

	c.logger.Debug("chat completion done",
		zap.String("op", op),
		zap.String("model", result.model),
		zap.String("finish_reason", result.finishReason),
		zap.Int("total_tokens", result.usage.TotalTokens))
	return result, nil
}
