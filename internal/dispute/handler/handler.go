// Package handler exposes the dispute registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"scholarchain/internal/dispute/models"
	"scholarchain/internal/transport/http/shared"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
	"scholarchain/pkg/requestcontext"
)

// Service defines the dispute operations the handler fronts.
type Service interface {
	Raise(ctx context.Context, caller, target domain.Principal, disputeType domain.DisputeType) (*models.Dispute, error)
	CastVote(ctx context.Context, caller domain.Principal, id uint64, guilty bool) (*models.Dispute, error)
	Resolve(ctx context.Context, caller domain.Principal, id uint64) (*models.Dispute, error)
	GetDispute(ctx context.Context, id uint64) (*models.Dispute, error)
	SetVotePeriod(ctx context.Context, caller domain.Principal, v uint64) error
	SetPenalty(ctx context.Context, caller domain.Principal, v uint64) error
	SetTrustThreshold(ctx context.Context, caller domain.Principal, v uint64) error
}

// Handler handles dispute endpoints.
type Handler struct {
	disputes Service
	logger   *slog.Logger
}

// New creates the dispute Handler.
func New(disputes Service, logger *slog.Logger) *Handler {
	return &Handler{disputes: disputes, logger: logger}
}

// Register registers the dispute routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/disputes", h.handleRaise)
	r.Post("/disputes/{id}/votes", h.handleVote)
	r.Post("/disputes/{id}/resolve", h.handleResolve)
	r.Get("/disputes/{id}", h.handleGet)
	r.Put("/disputes/config/vote-period", h.handleSetVotePeriod)
	r.Put("/disputes/config/penalty", h.handleSetPenalty)
	r.Put("/disputes/config/trust-threshold", h.handleSetTrustThreshold)
}

type raiseRequest struct {
	Target string `json:"target"`
	Type   string `json:"type"`
}

func (h *Handler) handleRaise(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req raiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	target, err := domain.ParsePrincipal(req.Target)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	disputeType, err := domain.ParseDisputeType(req.Type)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	dispute, err := h.disputes.Raise(ctx, requestcontext.Caller(ctx), target, disputeType)
	if err != nil {
		h.logger.WarnContext(ctx, "dispute rejected",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, dispute)
}

type ballotRequest struct {
	Guilty bool `json:"guilty"`
}

func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := disputeID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req ballotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	dispute, err := h.disputes.CastVote(ctx, requestcontext.Caller(ctx), id, req.Guilty)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, dispute)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := disputeID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	dispute, err := h.disputes.Resolve(ctx, requestcontext.Caller(ctx), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, dispute)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := disputeID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	dispute, err := h.disputes.GetDispute(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, dispute)
}

type configRequest struct {
	Value uint64 `json:"value"`
}

func (h *Handler) handleSetVotePeriod(w http.ResponseWriter, r *http.Request) {
	h.handleConfig(w, r, h.disputes.SetVotePeriod)
}

func (h *Handler) handleSetPenalty(w http.ResponseWriter, r *http.Request) {
	h.handleConfig(w, r, h.disputes.SetPenalty)
}

func (h *Handler) handleSetTrustThreshold(w http.ResponseWriter, r *http.Request) {
	h.handleConfig(w, r, h.disputes.SetTrustThreshold)
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request, set func(context.Context, domain.Principal, uint64) error) {
	ctx := r.Context()

	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := set(ctx, requestcontext.Caller(ctx), req.Value); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func disputeID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid dispute id")
	}
	return id, nil
}
