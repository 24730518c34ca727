package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
)

// Chunker 按句子边界分块，相邻分块之间保留重叠文本。
// 创建后不可修改，可被多个 goroutine 并发使用。
type Chunker struct {
	opts Options
}

// New 创建分块器，opts 为 nil 时使用默认参数
func New(opts *Options) (*Chunker, error) {
	o := opts.withDefaults()
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{opts: o}, nil
}

// Options 返回分块参数的副本
func (c *Chunker) Options() Options {
	return c.opts
}

// Chunk 将纯文本切分为分块。空文本或没有句子时返回空切片。
func (c *Chunker) Chunk(text, filename string) []*types.DocumentChunk {
	chunks := []*types.DocumentChunk{}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return chunks
	}

	flush := func(content string) {
		chunks = append(chunks, &types.DocumentChunk{
			ID:      chunkID(filename, len(chunks)),
			Content: content,
			Metadata: types.ChunkMetadata{
				Filename:   filename,
				ChunkIndex: len(chunks),
			},
		})
	}

	var current string
	for _, s := range sentences {
		sentence := s + "."

		if current != "" &&
			runeLen(current)+runeLen(sentence) > c.opts.ChunkSize &&
			runeLen(current) >= c.opts.MinChunkSize {
			flush(strings.TrimSpace(current))

			if seed := overlapText(current, c.opts.ChunkOverlap); seed != "" {
				current = seed + " " + sentence
			} else {
				current = sentence
			}
			continue
		}

		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}

	if rest := strings.TrimSpace(current); rest != "" {
		flush(rest)
	}

	for _, chunk := range chunks {
		chunk.Metadata.TotalChunks = len(chunks)
	}
	return chunks
}

// overlapText 取 content 末尾 n 个字符作为下一个分块的前缀。
// 后缀中存在句号（且不在开头）时只保留最后一个句号之后的部分，
// 由于累积内容总以句号结尾，这种情况下结果通常为空。
func overlapText(content string, n int) string {
	if runeLen(content) <= n {
		return content
	}

	runes := []rune(content)
	suffix := string(runes[len(runes)-n:])

	if i := strings.LastIndex(suffix, "."); i > 0 {
		return strings.TrimSpace(suffix[i+1:])
	}
	return suffix
}

func chunkID(filename string, index int) string {
	return fmt.Sprintf("%s-chunk-%d", filename, index)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
