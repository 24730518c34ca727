package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	base := errors.New("connection refused")

	err := Wrap(base, ErrIndexFailed, "insert batch 2")
	require.NotNil(t, err)
	assert.Equal(t, ErrIndexFailed, err.Code)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "[4006] Search index operation failed: insert batch 2: connection refused", err.Error())

	assert.Nil(t, Wrap(nil, ErrIndexFailed))
}

func TestWrap_KeepsExistingCode(t *testing.T) {
	inner := New(ErrEmptyQuestion)
	outer := fmt.Errorf("ask: %w", inner)

	err := Wrap(outer, ErrInternalServer, "while answering")
	assert.Equal(t, ErrEmptyQuestion, err.Code)
	assert.Equal(t, "while answering", err.Details)
	assert.Empty(t, inner.Details, "original error must not be modified")
}

func TestExtractCodeAndDetails(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantDetails string
	}{
		{"plain error", errors.New("boom"), ErrInternalServer, "boom"},
		{"app error with details", New(ErrInvalidChunkOptions, "chunk_size"), ErrInvalidChunkOptions, "chunk_size"},
		{"app error wrapping", Wrap(errors.New("disk full"), ErrDocStorageFailed), ErrDocStorageFailed, "disk full"},
		{"nested", fmt.Errorf("outer: %w", New(ErrDocumentNotFound)), ErrDocumentNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, ExtractCode(tt.err))
			assert.Equal(t, tt.wantDetails, GetDetails(tt.err))
			assert.True(t, Is(tt.err, tt.wantCode) || tt.wantCode == ErrInternalServer)
		})
	}
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(ErrDocumentNotFound))
	assert.Equal(t, http.StatusRequestEntityTooLarge, GetHTTPStatus(ErrFileTooLarge))
	assert.Equal(t, "Internal server error", GetMessage(999999))
	assert.True(t, IsClientError(ErrEmptyQuestion))
	assert.False(t, IsClientError(ErrGenerationFailed))
}
