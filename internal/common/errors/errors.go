// Package errors provides the structured error type shared by the assistant components.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// completion / embedding service
	ErrCodeCompletionFailed   ErrorCode = "COMPLETION_FAILED"
	ErrCodeCompletionTimeout  ErrorCode = "COMPLETION_TIMEOUT"
	ErrCodeEmbeddingFailed    ErrorCode = "EMBEDDING_FAILED"
	ErrCodeMalformedLLMOutput ErrorCode = "MALFORMED_LLM_OUTPUT"

	// retrieval
	ErrCodeVectorInsertFailed ErrorCode = "VECTOR_INSERT_FAILED"
	ErrCodeVectorSearchFailed ErrorCode = "VECTOR_SEARCH_FAILED"

	// collaborators
	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeRouteCreateFailed  ErrorCode = "ROUTE_CREATE_FAILED"
	ErrCodePlaceLookupFailed  ErrorCode = "PLACE_LOOKUP_FAILED"
	ErrCodeRouteSearchFailed  ErrorCode = "ROUTE_SEARCH_FAILED"

	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewCompletionFailedError covers transport failures and non-2xx answers from the completion service.
func NewCompletionFailedError(status int, err error) *StandardError {
	e := newError(ErrCodeCompletionFailed, "Completion service call failed", err, status == 0 || status == 429 || status >= 500)
	if status != 0 {
		e.Metadata = map[string]interface{}{"status": status}
	}
	return e
}

func NewCompletionTimeoutError(err error) *StandardError {
	return newError(ErrCodeCompletionTimeout, "Completion service timed out", err, false)
}

func NewEmbeddingFailedError(err error) *StandardError {
	return newError(ErrCodeEmbeddingFailed, "Embedding service call failed", err, true)
}

// NewMalformedOutputError marks model output that could not be parsed or validated.
func NewMalformedOutputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedLLMOutput,
		Message:   "Model output did not match the expected shape",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewVectorInsertFailedError(documentID string, err error) *StandardError {
	e := newError(ErrCodeVectorInsertFailed, "Document could not be added to the vector store", err, true)
	e.Metadata = map[string]interface{}{"documentId": documentID}
	return e
}

func NewVectorSearchFailedError(err error) *StandardError {
	return newError(ErrCodeVectorSearchFailed, "Vector search failed", err, true)
}

func NewSessionStoreFailedError(sessionID string, err error) *StandardError {
	e := newError(ErrCodeSessionStoreFailed, "Session store operation failed", err, true)
	e.Metadata = map[string]interface{}{"sessionId": sessionID}
	return e
}

func NewRouteCreateFailedError(err error) *StandardError {
	return newError(ErrCodeRouteCreateFailed, "Route could not be created", err, false)
}

func NewPlaceLookupFailedError(err error) *StandardError {
	return newError(ErrCodePlaceLookupFailed, "Place lookup failed", err, true)
}

func NewRouteSearchFailedError(err error) *StandardError {
	return newError(ErrCodeRouteSearchFailed, "Route search failed", err, true)
}

func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryable reports whether err (or anything it wraps) is a retryable StandardError.
func IsRetryable(err error) bool {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// CodeOf returns the code of the first StandardError in the chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// GetErrorCategory groups codes for metrics labels.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "COMPLETION") || strings.HasPrefix(codeStr, "EMBEDDING") || strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.HasPrefix(codeStr, "VECTOR"):
		return "RETRIEVAL"
	case strings.HasPrefix(codeStr, "SESSION"):
		return "SESSION"
	case strings.HasPrefix(codeStr, "ROUTE") || strings.HasPrefix(codeStr, "PLACE"):
		return "CATALOG"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
