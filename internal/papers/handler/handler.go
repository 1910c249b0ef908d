// Package handler exposes paper submission over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"scholarchain/internal/papers/models"
	"scholarchain/internal/transport/http/shared"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
	"scholarchain/pkg/requestcontext"
)

// Service defines the paper operations the handler fronts.
type Service interface {
	Submit(ctx context.Context, caller domain.Principal, title string, contentHash domain.ContentHash) (*models.Paper, error)
	GetPaper(ctx context.Context, id uint64) (*models.Paper, error)
	SetSubmissionFee(ctx context.Context, caller domain.Principal, v uint64) error
}

// Handler handles paper endpoints.
type Handler struct {
	papers Service
	logger *slog.Logger
}

// New creates the papers Handler.
func New(papers Service, logger *slog.Logger) *Handler {
	return &Handler{papers: papers, logger: logger}
}

// Register registers the paper routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/papers", h.handleSubmit)
	r.Get("/papers/{id}", h.handleGet)
	r.Put("/papers/config/submission-fee", h.handleSetSubmissionFee)
}

type submitRequest struct {
	Title       string `json:"title"`
	ContentHash string `json:"content_hash"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	hash, err := domain.ParseContentHash(req.ContentHash)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	paper, err := h.papers.Submit(ctx, requestcontext.Caller(ctx), req.Title, hash)
	if err != nil {
		h.logger.WarnContext(ctx, "submission rejected",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, paper)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid paper id"))
		return
	}
	paper, err := h.papers.GetPaper(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, paper)
}

type configRequest struct {
	Value uint64 `json:"value"`
}

func (h *Handler) handleSetSubmissionFee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.papers.SetSubmissionFee(ctx, requestcontext.Caller(ctx), req.Value); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
