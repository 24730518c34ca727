package chunker

import (
	"fmt"

	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
)

// ChunkByPages 逐页分块。每页独立处理（重叠和分块总数不跨页），
// 页码从 1 开始，结果按页序拼接。
func (c *Chunker) ChunkByPages(pages []string, filename string) []*types.DocumentChunk {
	chunks := []*types.DocumentChunk{}

	for i, page := range pages {
		pageNum := i + 1
		for _, chunk := range c.Chunk(page, filename) {
			chunk.ID = pageChunkID(filename, pageNum, chunk.Metadata.ChunkIndex)
			chunk.Metadata.Page = pageNum
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

func pageChunkID(filename string, page, index int) string {
	return fmt.Sprintf("%s-page%d-chunk-%d", filename, page, index)
}
