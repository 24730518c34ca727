package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkByPages(t *testing.T) {
	c := newTestChunker(t, nil)

	chunks := c.ChunkByPages([]string{"Page one text.", "Page two text."}, "doc.pdf")

	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].Metadata.Page)
	assert.Equal(t, 2, chunks[1].Metadata.Page)
	assert.Contains(t, chunks[0].ID, "page1")
	assert.Contains(t, chunks[1].ID, "page2")
	assert.Equal(t, "doc.pdf-page1-chunk-0", chunks[0].ID)
	assert.Equal(t, "doc.pdf-page2-chunk-0", chunks[1].ID)
	assert.Equal(t, "Page one text.", chunks[0].Content)
	assert.Equal(t, "Page two text.", chunks[1].Content)
}

func TestChunkByPages_PerPageCounters(t *testing.T) {
	c := newTestChunker(t, &Options{ChunkSize: 30, ChunkOverlap: 0, MinChunkSize: 10})

	pages := []string{
		"Alpha beta gamma. Delta epsilon zeta.",
		"",
		"Eta theta iota.",
	}
	chunks := c.ChunkByPages(pages, "book.pdf")

	require.Len(t, chunks, 3)

	assert.Equal(t, "book.pdf-page1-chunk-0", chunks[0].ID)
	assert.Equal(t, "book.pdf-page1-chunk-1", chunks[1].ID)
	assert.Equal(t, "book.pdf-page3-chunk-0", chunks[2].ID)

	assert.Equal(t, []int{1, 1, 3}, []int{chunks[0].Metadata.Page, chunks[1].Metadata.Page, chunks[2].Metadata.Page})
	assert.Equal(t, []int{0, 1, 0}, []int{chunks[0].Metadata.ChunkIndex, chunks[1].Metadata.ChunkIndex, chunks[2].Metadata.ChunkIndex})
	assert.Equal(t, []int{2, 2, 1}, []int{chunks[0].Metadata.TotalChunks, chunks[1].Metadata.TotalChunks, chunks[2].Metadata.TotalChunks})
}

func TestChunkByPages_Empty(t *testing.T) {
	c := newTestChunker(t, nil)

	assert.Empty(t, c.ChunkByPages(nil, "none.pdf"))
	assert.Empty(t, c.ChunkByPages([]string{"", "  "}, "blank.pdf"))
}
