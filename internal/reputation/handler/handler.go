// Package handler exposes reputation voting and aggregation over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scholarchain/internal/reputation/models"
	"scholarchain/internal/transport/http/shared"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
	"scholarchain/pkg/requestcontext"
)

// Service defines the reputation operations the handler fronts.
type Service interface {
	Vote(ctx context.Context, caller, target domain.Principal, score uint64) (*models.Vote, error)
	Finalize(ctx context.Context, caller, target domain.Principal) (uint64, error)
	GetVote(ctx context.Context, target, voter domain.Principal) (*models.Vote, error)
	SetVotingPeriod(ctx context.Context, caller domain.Principal, v uint64) error
	SetMaxReputation(ctx context.Context, caller domain.Principal, v uint64) error
}

// Handler handles reputation endpoints.
type Handler struct {
	reputation Service
	logger     *slog.Logger
}

// New creates the reputation Handler.
func New(reputation Service, logger *slog.Logger) *Handler {
	return &Handler{reputation: reputation, logger: logger}
}

// Register registers the reputation routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/reputation/votes", h.handleVote)
	r.Post("/reputation/finalize", h.handleFinalize)
	r.Get("/reputation/votes/{target}/{voter}", h.handleGetVote)
	r.Put("/reputation/config/voting-period", h.handleSetVotingPeriod)
	r.Put("/reputation/config/max-reputation", h.handleSetMaxReputation)
}

type voteRequest struct {
	Target string `json:"target"`
	Score  uint64 `json:"score"`
}

func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	target, err := domain.ParsePrincipal(req.Target)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	vote, err := h.reputation.Vote(ctx, requestcontext.Caller(ctx), target, req.Score)
	if err != nil {
		h.logger.WarnContext(ctx, "vote rejected",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, vote)
}

type finalizeRequest struct {
	Target string `json:"target"`
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	target, err := domain.ParsePrincipal(req.Target)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	sum, err := h.reputation.Finalize(ctx, requestcontext.Caller(ctx), target)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"granted": sum})
}

func (h *Handler) handleGetVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	target, err := domain.ParsePrincipal(chi.URLParam(r, "target"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	voter, err := domain.ParsePrincipal(chi.URLParam(r, "voter"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	vote, err := h.reputation.GetVote(ctx, target, voter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, vote)
}

type configRequest struct {
	Value uint64 `json:"value"`
}

func (h *Handler) handleSetVotingPeriod(w http.ResponseWriter, r *http.Request) {
	h.handleConfig(w, r, h.reputation.SetVotingPeriod)
}

func (h *Handler) handleSetMaxReputation(w http.ResponseWriter, r *http.Request) {
	h.handleConfig(w, r, h.reputation.SetMaxReputation)
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
