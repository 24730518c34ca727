package errors

import (
	"fmt"
	"net/http"
)

// Code couples a business error code with its HTTP status and message
type Code struct {
	Code    int
	Status  int
	Message string
}

const (
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Document / Q&A errors (4000-4999)
	ErrDocumentNotFound    = 4003
	ErrDocProcessingFailed = 4004
	ErrDocStorageFailed    = 4005
	ErrIndexFailed         = 4006
	ErrEmbeddingFailed     = 4007
	ErrInvalidFileType     = 4008
	ErrFileTooLarge        = 4009
	ErrInvalidChunkOptions = 4011
	ErrEmptyQuestion       = 4020
	ErrGenerationFailed    = 4021
	ErrSummarizationFailed = 4022
	ErrSearchFailed        = 4023
	ErrDocumentNotReady    = 4024
)

var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	ErrDocumentNotFound:    {ErrDocumentNotFound, http.StatusNotFound, "Document not found"},
	ErrDocProcessingFailed: {ErrDocProcessingFailed, http.StatusInternalServerError, "Document processing failed"},
	ErrDocStorageFailed:    {ErrDocStorageFailed, http.StatusInternalServerError, "Storage operation failed"},
	ErrIndexFailed:         {ErrIndexFailed, http.StatusBadGateway, "Search index operation failed"},
	ErrEmbeddingFailed:     {ErrEmbeddingFailed, http.StatusBadGateway, "Embedding generation failed"},
	ErrInvalidFileType:     {ErrInvalidFileType, http.StatusBadRequest, "Unsupported file type"},
	ErrFileTooLarge:        {ErrFileTooLarge, http.StatusRequestEntityTooLarge, "File size exceeds limit"},
	ErrInvalidChunkOptions: {ErrInvalidChunkOptions, http.StatusBadRequest, "Invalid chunking options"},
	ErrEmptyQuestion:       {ErrEmptyQuestion, http.StatusBadRequest, "Question must not be empty"},
	ErrGenerationFailed:    {ErrGenerationFailed, http.StatusBadGateway, "Answer generation failed"},
	ErrSummarizationFailed: {ErrSummarizationFailed, http.StatusBadGateway, "Summarization failed"},
	ErrSearchFailed:        {ErrSearchFailed, http.StatusBadGateway, "Passage search failed"},
	ErrDocumentNotReady:    {ErrDocumentNotReady, http.StatusConflict, "Document is still being processed"},
}

// GetCode returns the Code for a given error code, unknown codes map to internal error
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsClientError reports whether the code maps to a 4xx status
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// FormatError joins the code message with the first non-empty detail
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
