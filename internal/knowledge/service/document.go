package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/doc-qa-backend/internal/pkg/errors"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// multipart 头部和边界的额外字节
const multipartOverhead = 1 << 20

// DocumentManager 文档用例，*biz.DocumentUseCase 实现该接口
type DocumentManager interface {
	UploadDocument(ctx context.Context, filename string, data []byte) (*types.Document, error)
	GetDocument(ctx context.Context, id string) (*types.Document, error)
	ListDocuments(ctx context.Context, req *types.ListDocumentsRequest) (*types.ListDocumentsResponse, error)
	DeleteDocument(ctx context.Context, id string) error
}

type DocumentService struct {
	docs          DocumentManager
	maxUploadSize int64
	logger        *logger.Logger
}

func NewDocumentService(docs DocumentManager, maxUploadSize int64, log *logger.Logger) *DocumentService {
	return &DocumentService{
		docs:          docs,
		maxUploadSize: maxUploadSize,
		logger:        logger.OrDefault(log).Named("document_service"),
	}
}

// UploadDocument 单文件上传，表单字段 file
func (s *DocumentService) UploadDocument(c *gin.Context) {
	if s.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize+multipartOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			response.ErrorWithCode(c, apperrors.ErrFileTooLarge)
			return
		}
		response.BadRequest(c, "invalid file or field name is not 'file'")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, "failed to read file")
		return
	}

	s.logger.Info("file upload",
		zap.String("filename", header.Filename),
		zap.Int("file_size", len(data)))

	doc, err := s.docs.UploadDocument(c.Request.Context(), header.Filename, data)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, doc)
}

// ListDocuments 分页列出文档
func (s *DocumentService) ListDocuments(c *gin.Context) {
	var req struct {
		Page   int    `form:"page" binding:"omitempty,min=1"`
		Size   int    `form:"size" binding:"omitempty,min=1,max=100"`
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid parameters")
		return
	}

	resp, err := s.docs.ListDocuments(c.Request.Context(), &types.ListDocumentsRequest{
		Status: types.DocumentStatus(req.Status),
		Page:   req.Page,
		Size:   req.Size,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, resp)
}

// GetDocument 获取文档详情
func (s *DocumentService) GetDocument(c *gin.Context) {
	doc, err := s.docs.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, doc)
}

// DeleteDocument 删除文档
func (s *DocumentService) DeleteDocument(c *gin.Context) {
	if err := s.docs.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, nil)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
