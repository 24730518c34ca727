package biz

import (
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/chunker"
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	apperrors "github.com/lk2023060901/doc-qa-backend/internal/pkg/errors"
)

// ChunkPreviewRequest 分块预览请求，Pages 非空时按页分块
type ChunkPreviewRequest struct {
	Text         string   `json:"text"`
	Pages        []string `json:"pages"`
	Filename     string   `json:"filename"`
	ChunkSize    *int     `json:"chunk_size"`
	ChunkOverlap *int     `json:"chunk_overlap"`
	MinChunkSize *int     `json:"min_chunk_size"`
	Merge        *bool    `json:"merge"`
}

// ChunkPreview 分块预览结果
type ChunkPreview struct {
	Options chunker.Options        `json:"options"`
	Merged  bool                   `json:"merged"`
	Total   int                    `json:"total"`
	Chunks  []*types.DocumentChunk `json:"chunks"`
}

// ChunkUseCase 分块预览，未指定的参数使用配置值
type ChunkUseCase struct {
	defaults chunker.Options
	merge    bool
}

// NewChunkUseCase 创建分块预览用例
func NewChunkUseCase(defaults *chunker.Options, merge bool) *ChunkUseCase {
	opts := chunker.DefaultOptions()
	if defaults != nil {
		opts = defaults
	}
	return &ChunkUseCase{defaults: *opts, merge: merge}
}

// Preview 按请求参数分块
func (uc *ChunkUseCase) Preview(req *ChunkPreviewRequest) (*ChunkPreview, error) {
	if req == nil {
		return nil, apperrors.NewBadRequestError("request body is required")
	}

	opts := uc.defaults
	if req.ChunkSize != nil {
		opts.ChunkSize = *req.ChunkSize
	}
	if req.ChunkOverlap != nil {
		opts.ChunkOverlap = *req.ChunkOverlap
	}
	if req.MinChunkSize != nil {
		opts.MinChunkSize = *req.MinChunkSize
	}
	if err := opts.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidChunkOptions, err.Error())
	}

	c, err := chunker.New(&opts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidChunkOptions, err.Error())
	}

	filename := req.Filename
	if filename == "" {
		filename = "preview.txt"
	}

	var chunks []*types.DocumentChunk
	if len(req.Pages) > 0 {
		chunks = c.ChunkByPages(req.Pages, filename)
	} else {
		chunks = c.Chunk(req.Text, filename)
	}

	merge := uc.merge
	if req.Merge != nil {
		merge = *req.Merge
	}
	if merge {
		chunks = chunker.MergeSmallChunks(chunks, opts.MinChunkSize)
	}
	if chunks == nil {
		chunks = []*types.DocumentChunk{}
	}

	return &ChunkPreview{
		Options: c.Options(),
		Merged:  merge,
		Total:   len(chunks),
		Chunks:  chunks,
	}, nil
}
