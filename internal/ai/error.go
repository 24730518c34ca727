package ai

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyChoices 模型返回的 choices 为空
var ErrEmptyChoices = errors.New("ai: model returned no choices")

// ProviderError 模型接口调用错误
type ProviderError struct {
	Op         string // summarize / generate
	Model      string
	StatusCode int // HTTP 状态码，网络错误时为 0
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ai %s [%s][%d] %s: %v", e.Op, e.Model, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("ai %s [%s] %s: %v", e.Op, e.Model, e.Message, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable 限流和服务端错误可重试
func (e *ProviderError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

func newProviderError(op, model string, err error) *ProviderError {
	pe := &ProviderError{Op: op, Model: model, Message: "request failed", Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.HTTPStatusCode
		pe.Message = apiErr.Message
	case errors.As(err, &reqErr):
		pe.StatusCode = reqErr.HTTPStatusCode
	}
	return pe
}
