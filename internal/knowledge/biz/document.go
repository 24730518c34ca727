package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/doc-qa-backend/internal/ai"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/processor"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/storage"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/doc-qa-backend/internal/pkg/errors"
	"github.com/lk2023060901/doc-qa-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultMaxFileSize    = 50 << 20
	defaultProcessTimeout = 10 * time.Minute
)

// DocumentRepo 文档仓储接口
type DocumentRepo interface {
	Create(ctx context.Context, doc *types.Document) error
	GetByID(ctx context.Context, id string) (*types.Document, error)
	List(ctx context.Context, req *types.ListDocumentsRequest) ([]*types.Document, int64, error)
	Update(ctx context.Context, doc *types.Document) error
	UpdateStatus(ctx context.Context, id string, status types.DocumentStatus, errorMsg string) error
	Delete(ctx context.Context, id string) error
}

// Processor 文档处理器接口
type Processor interface {
	Process(ctx context.Context, filename string, fileType types.FileType, data []byte) (*processor.Result, error)
}

// Summarizer 摘要生成接口
type Summarizer interface {
	Summarize(ctx context.Context, text string) (*ai.SummaryResult, error)
}

// TaskRunner 异步任务执行接口，*workerpool.Pool 实现该接口
type TaskRunner interface {
	Submit(task func()) error
}

// DocumentConfig 上传与处理配置
type DocumentConfig struct {
	MaxFileSize       int64
	AllowedExtensions []string      // 为空时接受所有可识别的文件类型
	ProcessTimeout    time.Duration // 单个文档异步处理的超时
}

// DocumentUseCase 文档用例
type DocumentUseCase struct {
	repo       DocumentRepo
	files      storage.FileStore
	indexer    storage.Indexer
	processor  Processor
	summarizer Summarizer
	tasks      TaskRunner
	cfg        DocumentConfig
	logger     *logger.Logger
}

// NewDocumentUseCase 创建文档用例，summarizer 可为 nil
func NewDocumentUseCase(
	repo DocumentRepo,
	files storage.FileStore,
	indexer storage.Indexer,
	proc Processor,
	summarizer Summarizer,
	tasks TaskRunner,
	cfg DocumentConfig,
	log *logger.Logger,
) *DocumentUseCase {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = defaultProcessTimeout
	}
	return &DocumentUseCase{
		repo:       repo,
		files:      files,
		indexer:    indexer,
		processor:  proc,
		summarizer: summarizer,
		tasks:      tasks,
		cfg:        cfg,
		logger:     logger.OrDefault(log).Named("document"),
	}
}

// UploadDocument 校验并保存上传文件，创建 pending 记录后提交异步处理
func (uc *DocumentUseCase) UploadDocument(ctx context.Context, filename string, data []byte) (*types.Document, error) {
	filename = strings.TrimSpace(filepath.Base(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, apperrors.NewValidationError("filename")
	}

	fileType, err := uc.checkFileType(filename)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apperrors.Wrap(ErrDocumentEmpty, apperrors.ErrInvalidParams, "file is empty")
	}
	if int64(len(data)) > uc.cfg.MaxFileSize {
		return nil, apperrors.New(apperrors.ErrFileTooLarge,
			fmt.Sprintf("%d bytes exceeds the %d byte limit", len(data), uc.cfg.MaxFileSize))
	}

	now := time.Now()
	doc := &types.Document{
		ID:        uuid.New().String(),
		Filename:  filename,
		FileType:  fileType,
		FileSize:  int64(len(data)),
		FileHash:  calculateSHA256(data),
		Status:    types.DocumentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.ObjectKey = storage.ObjectKey(doc.ID, filename)

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "failed to create document")
	}

	if _, err := uc.files.Save(ctx, doc.ID, filename, data); err != nil {
		uc.markFailed(ctx, doc, err)
		return nil, apperrors.Wrap(err, apperrors.ErrDocStorageFailed)
	}

	task := func() {
		taskCtx, cancel := context.WithTimeout(context.Background(), uc.cfg.ProcessTimeout)
		defer cancel()
		if err := uc.ProcessDocument(taskCtx, doc.Clone(), data); err != nil {
			uc.logger.Warn("document processing failed",
				zap.String("document_id", doc.ID),
				zap.Error(err))
		}
	}
	if err := uc.tasks.Submit(task); err != nil {
		uc.markFailed(ctx, doc, err)
		return nil, apperrors.Wrap(err, apperrors.ErrServiceUnavail, "processing queue is full")
	}

	uc.logger.Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("filename", filename),
		zap.Int64("size", doc.FileSize))
	return doc, nil
}

// ProcessDocument 加载、分块、摘要、写入索引。data 为空时从文件存储读取
func (uc *DocumentUseCase) ProcessDocument(ctx context.Context, doc *types.Document, data []byte) error {
	start := time.Now()
	if err := uc.repo.UpdateStatus(ctx, doc.ID, types.DocumentStatusProcessing, ""); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	doc.Status = types.DocumentStatusProcessing

	if len(data) == 0 {
		loaded, err := uc.files.Load(ctx, doc.ObjectKey)
		if err != nil {
			return uc.fail(ctx, doc, apperrors.Wrap(err, apperrors.ErrDocStorageFailed))
		}
		data = loaded
	}

	result, err := uc.processor.Process(ctx, doc.Filename, doc.FileType, data)
	if err != nil {
		return uc.fail(ctx, doc, apperrors.Wrap(err, apperrors.ErrDocProcessingFailed))
	}
	if len(result.Chunks) == 0 {
		return uc.fail(ctx, doc, apperrors.Wrap(ErrNoContentExtracted, apperrors.ErrDocProcessingFailed))
	}

	doc.Summary = uc.summarize(ctx, doc.ID, result.Text)

	indexed, err := uc.indexer.Index(ctx, doc.ID, result.Chunks)
	if err != nil {
		return uc.fail(ctx, doc, apperrors.Wrap(err, apperrors.ErrIndexFailed))
	}

	doc.Status = types.DocumentStatusCompleted
	doc.ErrorMessage = ""
	if indexed.Failed > 0 {
		doc.ErrorMessage = fmt.Sprintf("%d of %d chunks failed to index", indexed.Failed, len(result.Chunks))
	}
	doc.ChunkCount = indexed.Indexed
	doc.TokenCount = result.TokenCount
	doc.PageCount = result.PageCount

	if err := uc.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	uc.logger.Info("document processed",
		zap.String("document_id", doc.ID),
		zap.Int("chunks", doc.ChunkCount),
		zap.Int("failed_chunks", indexed.Failed),
		zap.Int("tokens", doc.TokenCount),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// summarize 摘要失败只记录日志
func (uc *DocumentUseCase) summarize(ctx context.Context, docID, text string) string {
	if uc.summarizer == nil || strings.TrimSpace(text) == "" {
		return ""
	}
	res, err := uc.summarizer.Summarize(ctx, text)
	if err != nil {
		uc.logger.Warn("summarization failed",
			zap.String("document_id", docID),
			zap.Error(err))
		return ""
	}
	return res.Summary
}

// GetDocument 获取文档
func (uc *DocumentUseCase) GetDocument(ctx context.Context, id string) (*types.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewValidationError("id")
	}
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, apperrors.Wrap(err, apperrors.ErrDocumentNotFound)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	return doc, nil
}

// ListDocuments 分页列出文档
func (uc *DocumentUseCase) ListDocuments(ctx context.Context, req *types.ListDocumentsRequest) (*types.ListDocumentsResponse, error) {
	if req == nil {
		req = &types.ListDocumentsRequest{}
	}
	if req.Status != "" && !req.Status.Valid() {
		return nil, apperrors.NewValidationError("status")
	}

	page, size := NormalizePage(req.Page, req.Size)
	normalized := &types.ListDocumentsRequest{Status: req.Status, Page: page, Size: size}

	docs, total, err := uc.repo.List(ctx, normalized)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	return &types.ListDocumentsResponse{
		Items:      docs,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

// DeleteDocument 删除索引条目、原始文件和文档记录
func (uc *DocumentUseCase) DeleteDocument(ctx context.Context, id string) error {
	doc, err := uc.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if doc.Status == types.DocumentStatusProcessing {
		return apperrors.New(apperrors.ErrDocumentNotReady)
	}

	if err := uc.indexer.DeleteDocument(ctx, doc.ID); err != nil {
		return apperrors.Wrap(err, apperrors.ErrIndexFailed)
	}
	if err := uc.files.Delete(ctx, doc.ObjectKey); err != nil {
		uc.logger.Warn("failed to delete stored file",
			zap.String("document_id", doc.ID),
			zap.String("key", doc.ObjectKey),
			zap.Error(err))
	}
	if err := uc.repo.Delete(ctx, doc.ID); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	uc.logger.Info("document deleted", zap.String("document_id", doc.ID))
	return nil
}

func (uc *DocumentUseCase) checkFileType(filename string) (types.FileType, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fileType := types.FileTypeFromFilename(filename)
	if fileType == types.FileTypeUnknown || !uc.extensionAllowed(ext) {
		return "", apperrors.New(apperrors.ErrInvalidFileType, ext)
	}
	return fileType, nil
}

func (uc *DocumentUseCase) extensionAllowed(ext string) bool {
	if len(uc.cfg.AllowedExtensions) == 0 {
		return true
	}
	for _, allowed := range uc.cfg.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// fail 将文档标记为失败并返回原错误
func (uc *DocumentUseCase) fail(ctx context.Context, doc *types.Document, err error) error {
	uc.markFailed(ctx, doc, err)
	return err
}

func (uc *DocumentUseCase) markFailed(ctx context.Context, doc *types.Document, cause error) {
	doc.Status = types.DocumentStatusFailed
	doc.ErrorMessage = apperrors.GetDetails(cause)
	if doc.ErrorMessage == "" {
		doc.ErrorMessage = cause.Error()
	}
	// ctx 可能已超时，状态仍需写回
	statusCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := uc.repo.UpdateStatus(statusCtx, doc.ID, types.DocumentStatusFailed, doc.ErrorMessage); err != nil {
		uc.logger.Error("failed to mark document failed",
			zap.String("document_id", doc.ID),
			zap.Error(err))
	}
}

func calculateSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
