package service

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/biz"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/response"
)

// QuestionAnswerer 问答用例，*biz.QAUseCase 实现该接口
type QuestionAnswerer interface {
	Ask(ctx context.Context, req *biz.AskRequest) (*biz.Answer, error)
}

// ChunkPreviewer 分块预览用例，*biz.ChunkUseCase 实现该接口
type ChunkPreviewer interface {
	Preview(req *biz.ChunkPreviewRequest) (*biz.ChunkPreview, error)
}

type ChatService struct {
	qa     QuestionAnswerer
	chunks ChunkPreviewer
	logger *logger.Logger
}

func NewChatService(qa QuestionAnswerer, chunks ChunkPreviewer, log *logger.Logger) *ChatService {
	return &ChatService{
		qa:     qa,
		chunks: chunks,
		logger: logger.OrDefault(log).Named("chat_service"),
	}
}

// Chat 基于已上传文档回答问题
func (s *ChatService) Chat(c *gin.Context) {
	var req biz.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	answer, err := s.qa.Ask(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, answer)
}

// PreviewChunks 按请求参数对文本分块，不写入索引
func (s *ChatService) PreviewChunks(c *gin.Context) {
	var req biz.ChunkPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	preview, err := s.chunks.Preview(&req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, preview)
}
