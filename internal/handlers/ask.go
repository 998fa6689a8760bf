package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"xyian-bot/internal/contextutil"
	"xyian-bot/internal/service"
)

// AskHandler handles HTTP requests for knowledge queries.
type AskHandler struct {
	askService service.AskService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(askService service.AskService) *AskHandler {
	return &AskHandler{askService: askService}
}

// AskRequest represents the HTTP request payload for knowledge queries.
// This mirrors service.AskRequest but is defined here for HTTP layer separation.
type AskRequest struct {
	Question string `json:"question"`
	Username string `json:"username,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// AskResponse represents the HTTP response payload for knowledge queries.
type AskResponse struct {
	// The composed (or enriched) answer text
	Answer string `json:"answer"`

	// Confidence bucket of the top match; omitted on the fallback path
	Confidence string `json:"confidence,omitempty"`

	// Ranked matches backing the answer
	Matches []service.MatchSummary `json:"matches"`

	// Enriched reports whether the LLM rewrote the composed answer
	Enriched bool `json:"enriched,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles POST /api/ask.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcResp, err := h.askService.Ask(ctx, service.AskRequest{
		Question: req.Question,
		Username: req.Username,
		Limit:    req.Limit,
	})
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	resp := AskResponse{
		Answer:     svcResp.Answer,
		Confidence: svcResp.Confidence,
		Matches:    svcResp.Matches,
		Enriched:   svcResp.Enriched,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleServiceError maps service errors to HTTP status codes.
func (h *AskHandler) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "ask service error", "error", err)

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Knowledge base is still loading")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to process question")
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
