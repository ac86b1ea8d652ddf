// Package api exposes the chat engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	apperrors "trip-assistant/internal/common/errors"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"
)

const maxBodyBytes = 64 << 10

// ChatService runs one conversational turn.
type ChatService interface {
	Chat(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error)
}

type Config struct {
	// Timeout bounds a whole turn, including every completion call.
	Timeout time.Duration
}

type Handler struct {
	config  *Config
	service ChatService
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(cfg *Config, service ChatService, log logger.Logger) *Handler {
	if cfg == nil {
		cfg = &Config{}
	}
	log = log.With(map[string]interface{}{"component": "api"})
	return &Handler{
		config:  cfg,
		service: service,
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
	}
}

// Routes registers the chat endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/chat", h.HandleChat)
}

type errorBody struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
	Details []string            `json:"details,omitempty"`
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(w, http.StatusMethodNotAllowed, apperrors.ErrCodeInvalidRequest, "method not allowed", nil)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusRequestEntityTooLarge, apperrors.ErrCodeInvalidRequest, "request body too large", nil)
		return
	}

	if result := chatRequestSchema.ValidateBytes(body); !result.Valid {
		h.logger.Debug("rejected chat request", map[string]interface{}{"errors": result.GetErrorMessages()})
		h.writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest, "request is invalid", result.GetErrorMessages())
		return
	}

	var req models.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest, "request is invalid", []string{err.Error()})
		return
	}

	ctx := r.Context()
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	resp, err := h.service.Chat(ctx, req)
	if err != nil {
		status, stdErr := h.errors.Handle(err, map[string]interface{}{"path": r.URL.Path})
		var details []string
		if status < http.StatusInternalServerError && stdErr.Details != "" {
			details = []string{stdErr.Details}
		}
		h.writeError(w, status, stdErr.Code, stdErr.Message, details)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code apperrors.ErrorCode, message string, details []string) {
	writeJSON(w, status, errorBody{Code: code, Message: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
