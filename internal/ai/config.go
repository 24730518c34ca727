package ai

import (
	"errors"
	"time"
)

var (
	ErrMissingAPIKey = errors.New("ai: API key is required")
	ErrMissingModel  = errors.New("ai: summary and chat models are required")
)

const (
	defaultTimeout         = 60 * time.Second
	defaultMaxTokens       = 1024
	defaultSummaryMaxInput = 8000
)

// Config 模型客户端配置，创建 Client 后不可变
type Config struct {
	BaseURL         string        // OpenAI 兼容接口地址，为空使用官方地址
	APIKey          string        // API Key
	SummaryModel    string        // 摘要模型
	ChatModel       string        // 问答模型
	MaxTokens       int           // 单次回答最大 token
	Temperature     float32       // 采样温度
	SummaryMaxInput int           // 摘要输入最多字符数
	Timeout         time.Duration // 请求超时
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.SummaryModel == "" || c.ChatModel == "" {
		return ErrMissingModel
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.SummaryMaxInput <= 0 {
		c.SummaryMaxInput = defaultSummaryMaxInput
	}
	return c
}
