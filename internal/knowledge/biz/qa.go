package biz

import (
	"bytes"
	"context"
	"strings"

	"github.com/lk2023060901/doc-qa-backend/internal/ai"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/storage"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/doc-qa-backend/internal/pkg/errors"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

// NoRelevantContentAnswer 检索不到相关内容时的固定回答
const NoRelevantContentAnswer = "I could not find any relevant content in the uploaded documents to answer this question."

const (
	defaultTopK = 5
	maxTopK     = 20
)

// Generator 回答生成接口
type Generator interface {
	Generate(ctx context.Context, req *ai.GenerateRequest) (*ai.GenerationResult, error)
}

// AskRequest 问答请求
type AskRequest struct {
	Question string       `json:"question"`
	History  []ai.Message `json:"history,omitempty"`
	TopK     int          `json:"top_k,omitempty"`
}

// Answer 问答结果
type Answer struct {
	Answer     string           `json:"answer"`
	AnswerHTML string           `json:"answer_html"`
	Sources    []*types.Passage `json:"sources"`
	Model      string           `json:"model,omitempty"`
}

// QAUseCase 文档问答用例
type QAUseCase struct {
	searcher  storage.Searcher
	generator Generator
	topK      int
	markdown  goldmark.Markdown
	logger    *logger.Logger
}

// NewQAUseCase 创建问答用例，topK 为请求未指定时的检索数量
func NewQAUseCase(searcher storage.Searcher, generator Generator, topK int, log *logger.Logger) *QAUseCase {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &QAUseCase{
		searcher:  searcher,
		generator: generator,
		topK:      topK,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:    logger.OrDefault(log).Named("qa"),
	}
}

// Ask 检索相关段落并生成回答
func (uc *QAUseCase) Ask(ctx context.Context, req *AskRequest) (*Answer, error) {
	if req == nil || strings.TrimSpace(req.Question) == "" {
		return nil, apperrors.New(apperrors.ErrEmptyQuestion)
	}
	question := strings.TrimSpace(req.Question)

	topK := req.TopK
	if topK <= 0 {
		topK = uc.topK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	passages, err := uc.searcher.Search(ctx, question, topK)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSearchFailed)
	}

	if len(passages) == 0 {
		uc.logger.Info("no passages found", zap.String("question", question))
		return &Answer{
			Answer:     NoRelevantContentAnswer,
			AnswerHTML: uc.renderHTML(NoRelevantContentAnswer),
			Sources:    []*types.Passage{},
		}, nil
	}

	gen, err := uc.generator.Generate(ctx, &ai.GenerateRequest{
		Question: question,
		History:  req.History,
		Passages: passages,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrGenerationFailed)
	}

	uc.logger.Info("question answered",
		zap.Int("sources", len(passages)),
		zap.String("model", gen.Model))
	return &Answer{
		Answer:     gen.Answer,
		AnswerHTML: uc.renderHTML(gen.Answer),
		Sources:    passages,
		Model:      gen.Model,
	}, nil
}

// renderHTML 渲染失败时返回空串，原始 Markdown 仍在 Answer 中
func (uc *QAUseCase) renderHTML(md string) string {
	var buf bytes.Buffer
	if err := uc.markdown.Convert([]byte(md), &buf); err != nil {
		uc.logger.Warn("failed to render answer", zap.Error(err))
		return ""
	}
	return buf.String()
}
