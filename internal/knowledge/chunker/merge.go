package chunker

import (
	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
)

// MergeSmallChunks 合并同一文件中相邻的过短分块。
//
// 单次从左到右扫描：当前分块短于 minSize 时，持续吸收其后同一文件且同样
// 短于 minSize 的分块，以空格拼接，每吸收一个将 TotalChunks 减一。
// 合并结果保留第一个分块的 ID、页码和序号。输入切片及其中的分块不会被修改，
// 对同一 minSize 重复调用结果不变。
func MergeSmallChunks(chunks []*types.DocumentChunk, minSize int) []*types.DocumentChunk {
	merged := make([]*types.DocumentChunk, 0, len(chunks))

	for i := 0; i < len(chunks); i++ {
		if chunks[i] == nil {
			continue
		}
		current := chunks[i].Clone()

		for runeLen(current.Content) < minSize && i+1 < len(chunks) {
			next := chunks[i+1]
			if next == nil || next.Metadata.Filename != current.Metadata.Filename {
				break
			}
			if runeLen(next.Content) >= minSize {
				break
			}
			current.Content += " " + next.Content
			current.Metadata.TotalChunks--
			i++
		}

		merged = append(merged, current)
	}
	return merged
}
