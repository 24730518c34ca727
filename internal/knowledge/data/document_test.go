package data

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/lk2023060901/doc-qa-backend/internal/knowledge/types"
	"github.com/stretchr/testify/assert"
)

func TestDocumentPOMapping(t *testing.T) {
	created := time.Now().Add(-time.Hour).UTC()
	doc := &types.Document{
		ID:         "0b7c2f7e-8d44-4a8e-9a57-3f5f3d0e6a11",
		Filename:   "report.pdf",
		FileType:   types.FileTypePdf,
		FileSize:   1024000,
		FileHash:   "hash123",
		ObjectKey:  "uploads/0b7c/report.pdf",
		Status:     types.DocumentStatusCompleted,
		ChunkCount: 15,
		TokenCount: 1000,
		PageCount:  4,
		Summary:    "quarterly numbers",
		CreatedAt:  created,
		UpdatedAt:  created,
	}

	po := toPO(doc)
	assert.Equal(t, "pdf", po.FileType)
	assert.Equal(t, "completed", po.Status)
	assert.Equal(t, created, po.CreatedAt)

	assert.Equal(t, doc, toDomain(po))
	assert.Equal(t, "documents", DocumentPO{}.TableName())
}

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"valid", []byte("Hello, 世界"), "Hello, 世界"},
		{"single invalid byte", []byte{'H', 'i', 0xBA, '!'}, "Hi !"},
		{"invalid run", []byte{'a', 0xBA, 0xBB, 'b'}, "a b"},
		{"empty", []byte{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeUTF8(string(tt.input))
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestToPO_SanitizesText(t *testing.T) {
	po := toPO(&types.Document{Filename: "bad\xffname.txt", ErrorMessage: "oops\xba"})
	assert.True(t, utf8.ValidString(po.FileName))
	assert.True(t, utf8.ValidString(po.ErrorMessage))
}
