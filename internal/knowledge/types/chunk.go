package types

// DocumentChunk 文档分块（交给索引服务之前的最小单元）
type DocumentChunk struct {
	ID       string        `json:"id"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata 分块元数据
type ChunkMetadata struct {
	Filename    string `json:"filename"`
	Page        int    `json:"page,omitempty"` // 按页分块时的页码（从 1 开始），否则为 0
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
	TokenCount  int    `json:"token_count,omitempty"`
}

// Clone 复制分块，避免修改调用方持有的数据
func (c *DocumentChunk) Clone() *DocumentChunk {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
