// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"net/http"
	"time"
)

const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

// Logger is the subset of the application logger the handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns errors escaping a request into a status code and a
// loggable StandardError.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalizes err, logs it unless it is a client error, and returns
// the HTTP status to answer with.
func (h *ErrorHandler) Handle(err error, fields map[string]interface{}) (int, *StandardError) {
	stdErr := Normalize(err)
	status := HTTPStatus(stdErr.Code)
	if status >= http.StatusInternalServerError {
		h.logError(stdErr, fields)
	}
	return status, stdErr
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// HTTPStatus maps an error code onto the status returned to API callers.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeCompletionTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeCompletionFailed, ErrCodeEmbeddingFailed, ErrCodeMalformedLLMOutput:
		return http.StatusBadGateway
	case ErrCodeSessionStoreFailed, ErrCodeVectorSearchFailed, ErrCodeVectorInsertFailed,
		ErrCodeRouteCreateFailed, ErrCodePlaceLookupFailed, ErrCodeRouteSearchFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *ErrorHandler) logError(stdErr *StandardError, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	for k, v := range fields {
		entry[k] = v
	}
	h.logger.Error("request failed", entry)
}
