// Package handler exposes peer review submission and validation over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"scholarchain/internal/reviews/models"
	"scholarchain/internal/transport/http/shared"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
	"scholarchain/pkg/requestcontext"
)

// Service defines the review operations the handler fronts.
type Service interface {
	Submit(ctx context.Context, caller domain.Principal, paperID uint64, contentHash domain.ContentHash) (*models.Review, error)
	Validate(ctx context.Context, caller domain.Principal, id uint64) (*models.Review, error)
	GetReview(ctx context.Context, id uint64) (*models.Review, error)
}

// Handler handles review endpoints.
type Handler struct {
	reviews Service
	logger  *slog.Logger
}

// New creates the reviews Handler.
func New(reviews Service, logger *slog.Logger) *Handler {
	return &Handler{reviews: reviews, logger: logger}
}

// Register registers the review routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/reviews", h.handleSubmit)
	r.Post("/reviews/{id}/validate", h.handleValidate)
	r.Get("/reviews/{id}", h.handleGet)
}

type submitRequest struct {
	PaperID     uint64 `json:"paper_id"`
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

	review, err := h.reviews.Submit(ctx, requestcontext.Caller(ctx), req.PaperID, hash)
	if err != nil {
		h.logger.WarnContext(ctx, "review rejected",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, review)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := reviewID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	review, err := h.reviews.Validate(ctx, requestcontext.Caller(ctx), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, review)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := reviewID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	review, err := h.reviews.GetReview(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, review)
}

func reviewID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid review id")
	}
	return id, nil
}
