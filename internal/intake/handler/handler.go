// Package handler exposes the intake surface: form submissions arrive here
// and are handed to the workflow synchronously. The HTTP response reports
// the terminal status, but the row store is the durable record.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"keydesk/internal/intake/models"
	"keydesk/internal/workflow"
	"keydesk/pkg/platform/httputil"
	"keydesk/pkg/requestcontext"
)

// Service processes one submission to a terminal state.
type Service interface {
	Process(ctx context.Context, event models.SubmissionEvent) workflow.Result
}

// Handler wires intake endpoints to the workflow service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an intake handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts intake endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/submissions", h.HandleSubmission)
}

// HandleSubmission handles POST /v1/submissions requests.
func (h *Handler) HandleSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeJSON[SubmissionRequest](w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result := h.service.Process(ctx, req.ToEvent())

	h.logger.InfoContext(ctx, "submission accepted",
		"request_id", requestID,
		"row", req.Row,
		"status", result.Status,
		"state", result.State,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	// The workflow absorbed any failure into the row store and the admin
	// alert, so the transport answer is 202 either way. The secret is never
	// part of the response.
	writeAccepted(w, result)
}

// SubmissionResponse is the HTTP response for POST /v1/submissions.
type SubmissionResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

func writeAccepted(w http.ResponseWriter, result workflow.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(SubmissionResponse{
		Status: string(result.Status),
		State:  string(result.State),
	})
}
