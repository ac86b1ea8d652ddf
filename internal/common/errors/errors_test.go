package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionFailedError_Retryability(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"transport error", 0, true},
		{"rate limited", 429, true},
		{"server error", 503, true},
		{"bad request", 400, false},
		{"unauthorized", 401, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCompletionFailedError(tt.status, fmt.Errorf("status %d", tt.status))
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, ErrCodeCompletionFailed, err.Code)
		})
	}
}

func TestIsRetryable_FollowsWrapping(t *testing.T) {
	cause := stderrors.New("connection reset")
	wrapped := fmt.Errorf("embed chunk 3: %w", NewEmbeddingFailedError(cause))

	assert.True(t, IsRetryable(wrapped))
	assert.Equal(t, ErrCodeEmbeddingFailed, CodeOf(wrapped))
	assert.True(t, stderrors.Is(wrapped, cause))

	assert.False(t, IsRetryable(stderrors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("plain")))
}

func TestStandardError_Message(t *testing.T) {
	err := NewInvalidRequestError("query must not be empty")
	assert.Equal(t, "StandardError[INVALID_REQUEST]: Request is invalid", err.Error())
	assert.Equal(t, "query must not be empty", err.Details)
	assert.False(t, err.Timestamp.IsZero())
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeCompletionTimeout))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeMalformedLLMOutput))
	assert.Equal(t, "RETRIEVAL", GetErrorCategory(ErrCodeVectorInsertFailed))
	assert.Equal(t, "SESSION", GetErrorCategory(ErrCodeSessionStoreFailed))
	assert.Equal(t, "CATALOG", GetErrorCategory(ErrCodeRouteCreateFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidRequest))
	assert.Equal(t, "OTHER", GetErrorCategory("SOMETHING_ELSE"))
}

type recordingLogger struct {
	entries []map[string]interface{}
}

func (r *recordingLogger) Error(_ string, fields map[string]interface{}) {
	r.entries = append(r.entries, fields)
}

func TestErrorHandler_Handle(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	status, stdErr := h.Handle(NewInvalidRequestError("query must not be empty"), nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, ErrCodeInvalidRequest, stdErr.Code)
	assert.Empty(t, log.entries)

	status, stdErr = h.Handle(fmt.Errorf("turn: %w", NewCompletionTimeoutError(stderrors.New("deadline"))), nil)
	assert.Equal(t, 504, status)
	assert.Equal(t, ErrCodeCompletionTimeout, stdErr.Code)

	status, stdErr = h.Handle(stderrors.New("nil map"), map[string]interface{}{"path": "/api/chat"})
	assert.Equal(t, 500, status)
	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.Equal(t, "nil map", stdErr.Details)
	assert.Len(t, log.entries, 2)
	assert.Equal(t, "/api/chat", log.entries[1]["path"])
	assert.Equal(t, "OTHER", log.entries[1]["errorCategory"])
}
