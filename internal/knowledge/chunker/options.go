package chunker

import (
	"errors"
	"fmt"
)

const (
	// DefaultChunkSize 默认分块大小（字符数）
	DefaultChunkSize = 1000
	// DefaultChunkOverlap 默认重叠字符数
	DefaultChunkOverlap = 200
	// DefaultMinChunkSize 默认最小分块大小（字符数）
	DefaultMinChunkSize = 100
)

// ErrInvalidOptions 分块参数不合法
var ErrInvalidOptions = errors.New("chunker: invalid options")

// Options 分块参数，长度均按 Unicode 字符（rune）计算
type Options struct {
	ChunkSize    int `json:"chunk_size" mapstructure:"chunk_size"`         // 分块的软上限
	ChunkOverlap int `json:"chunk_overlap" mapstructure:"chunk_overlap"`   // 从上一个分块末尾带入下一个分块的字符数
	MinChunkSize int `json:"min_chunk_size" mapstructure:"min_chunk_size"` // 小于该长度的累积内容不会被提前切出
}

// DefaultOptions 返回默认分块参数
func DefaultOptions() *Options {
	return &Options{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		MinChunkSize: DefaultMinChunkSize,
	}
}

// withDefaults 返回补全零值后的副本
func (o *Options) withDefaults() Options {
	if o == nil {
		return *DefaultOptions()
	}
	out := *o
	if out.ChunkSize == 0 {
		out.ChunkSize = DefaultChunkSize
	}
	if out.MinChunkSize == 0 {
		out.MinChunkSize = DefaultMinChunkSize
	}
	return out
}

// Validate 校验分块参数
func (o Options) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size %d must be positive", ErrInvalidOptions, o.ChunkSize)
	}
	if o.MinChunkSize <= 0 {
		return fmt.Errorf("%w: min_chunk_size %d must be positive", ErrInvalidOptions, o.MinChunkSize)
	}
	if o.MinChunkSize > o.ChunkSize {
		return fmt.Errorf("%w: min_chunk_size %d cannot exceed chunk_size %d", ErrInvalidOptions, o.MinChunkSize, o.ChunkSize)
	}
	if o.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk_overlap %d cannot be negative", ErrInvalidOptions, o.ChunkOverlap)
	}
	if o.ChunkOverlap >= o.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be smaller than chunk_size %d", ErrInvalidOptions, o.ChunkOverlap, o.ChunkSize)
	}
	return nil
}
