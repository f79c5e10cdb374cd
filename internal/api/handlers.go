package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"portfolio-relay/internal/contextutil"
	"portfolio-relay/internal/usecase"
)

const (
	maxBodyBytes = 10 << 20

	// isoMillis matches the millisecond ISO-8601 form clients already parse.
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

type healthResponse struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Version  string   `json:"version"`
	Features []string `json:"features"`
}

type chatResponse struct {
	Reply      string `json:"reply"`
	TokensUsed int    `json:"tokensUsed"`
	Model      string `json:"model"`
	Timestamp  string `json:"timestamp"`
}

type clearResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type notFoundResponse struct {
	Error              string   `json:"error"`
	AvailableEndpoints []string `json:"availableEndpoints"`
}

type handlers struct {
	relay         ChatRelay
	exposeDetails bool
	now           func() time.Time
}

func (h *handlers) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "online",
		Message:  "Portfolio AI relay is running",
		Version:  "2.0",
		Features: Features,
	})
}

func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large"})
			return
		}
		logger.WarnContext(ctx, "failed to read request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	in, err := h.relay.Validate(body)
	if err != nil {
		h.writeRelayError(w, r, err)
		return
	}

	out, err := h.relay.Chat(ctx, in)
	if err != nil {
		h.writeRelayError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:      out.Reply,
		TokensUsed: out.TokensUsed,
		Model:      out.Model,
		Timestamp:  out.Timestamp.UTC().Format(isoMillis),
	})
}

func (h *handlers) clear(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, clearResponse{
		Message:   "Conversation cleared successfully",
		Timestamp: h.clock().UTC().Format(isoMillis),
	})
}

func (h *handlers) notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, notFoundResponse{
		Error:              "Endpoint not found",
		AvailableEndpoints: Endpoints,
	})
}

// writeRelayError maps a relay failure onto a status code and a caller-safe
// message. Upstream authentication failures are reported as 500.
func (h *handlers) writeRelayError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var relayErr *usecase.Error
	if !errors.As(err, &relayErr) {
		logger.ErrorContext(ctx, "chat failed", "error", err)
		h.writeGenericError(w, err)
		return
	}

	switch relayErr.Code {
	case usecase.ErrorInvalidInput:
		logger.WarnContext(ctx, "invalid chat request", "reason", relayErr.Reason)
		msg := relayErr.Message
		if msg == "" {
			msg = "Valid message is required"
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
	case usecase.ErrorConfiguration:
		logger.ErrorContext(ctx, "provider credential unavailable", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Server configuration error"})
	case usecase.ErrorUpstreamAuth:
		logger.ErrorContext(ctx, "provider rejected credential", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Authentication error. Please contact support."})
	case usecase.ErrorRateLimited:
		logger.WarnContext(ctx, "provider rate limited", "error", err)
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too many requests. Please wait a moment and try again."})
	case usecase.ErrorUpstreamBadRequest:
		logger.WarnContext(ctx, "provider rejected request", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request. Please check your input and try again."})
	default:
		logger.ErrorContext(ctx, "chat failed", "code", relayErr.Code, "reason", relayErr.Reason, "error", err)
		h.writeGenericError(w, err)
	}
}

func (h *handlers) writeGenericError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: "Failed to get AI response. Please try again."}
	if h.exposeDetails {
		resp.Details = errorDetail(err)
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// errorDetail prefers the wrapped cause over the relay's classification text.
func errorDetail(err error) string {
	var relayErr *usecase.Error
	if errors.As(err, &relayErr) && relayErr.Err != nil {
		return relayErr.Err.Error()
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
