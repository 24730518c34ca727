package milvus

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Predefined errors
var (
	// ErrInvalidConfig indicates that the configuration is invalid
	ErrInvalidConfig = errors.New("milvus: invalid config")

	// ErrClientClosed indicates that the client is closed
	ErrClientClosed = errors.New("milvus: client is closed")

	// ErrInvalidCollectionName indicates that the collection name is invalid
	ErrInvalidCollectionName = errors.New("milvus: invalid collection name")

	// ErrInvalidData indicates that the insert payload is empty or malformed
	ErrInvalidData = errors.New("milvus: invalid data")

	// ErrInvalidExpression indicates that a filter expression is empty
	ErrInvalidExpression = errors.New("milvus: invalid expression")

	// ErrInvalidIndexType indicates that the index type is not supported
	ErrInvalidIndexType = errors.New("milvus: invalid index type")
)

// Error wraps a failed Milvus operation with the collection it targeted.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("milvus %s [%s]: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("milvus %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError wraps err with operation context. A nil err stays nil and an
// existing *Error is not wrapped twice.
func WrapError(op string, err error, collection string) error {
	if err == nil {
		return nil
	}
	var me *Error
	if errors.As(err, &me) {
		return err
	}
	return &Error{Op: op, Collection: collection, Err: err}
}

// IsTimeout reports whether err is a deadline or timeout failure.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}

// IsConnectionError reports whether err looks like a transport failure.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection reset", "unavailable", "broken pipe", "no such host"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err says the collection or entity does not exist.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "not exist")
}

func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return IsTimeout(err) || IsConnectionError(err)
}
