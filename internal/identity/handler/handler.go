// Package handler exposes the identity ledger over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scholarchain/internal/identity/models"
	"scholarchain/internal/transport/http/shared"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
	"scholarchain/pkg/requestcontext"
)

// Service defines the identity operations the handler fronts.
type Service interface {
	Register(ctx context.Context, caller domain.Principal, role domain.Role, profileHash domain.ContentHash, stake uint64) (*models.User, error)
	AddRole(ctx context.Context, caller domain.Principal, role domain.Role) (*models.User, error)
	UpdateProfile(ctx context.Context, caller domain.Principal, profileHash domain.ContentHash) (*models.User, error)
	ToggleActive(ctx context.Context, caller, target domain.Principal) (*models.User, error)
	WithdrawStake(ctx context.Context, caller domain.Principal) (uint64, error)
	GetUser(ctx context.Context, principal domain.Principal) (*models.User, error)
	IsTrusted(ctx context.Context, principal domain.Principal) (bool, error)
	SetMinStake(ctx context.Context, caller domain.Principal, v uint64) error
	SetTrustThreshold(ctx context.Context, caller domain.Principal, v uint64) error
}

// Handler handles identity endpoints.
type Handler struct {
	identity Service
	logger   *slog.Logger
}

// New creates the identity Handler.
func New(identity Service, logger *slog.Logger) *Handler {
	return &Handler{identity: identity, logger: logger}
}

// Register registers the identity routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/identity/register", h.handleRegister)
	r.Post("/identity/roles", h.handleAddRole)
	r.Put("/identity/profile", h.handleUpdateProfile)
	r.Post("/identity/withdraw", h.handleWithdrawStake)
	r.Post("/identity/users/{principal}/toggle", h.handleToggleActive)
	r.Get("/identity/users/{principal}", h.handleGetUser)
	r.Get("/identity/users/{principal}/trusted", h.handleIsTrusted)
	r.Put("/identity/config/min-stake", h.handleSetMinStake)
	r.Put("/identity/config/trust-threshold", h.handleSetTrustThreshold)
}

type registerRequest struct {
	Role        string `json:"role"`
	ProfileHash string `json:"profile_hash"`
	Stake       uint64 `json:"stake"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.Caller(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	hash, err := domain.ParseContentHash(req.ProfileHash)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.identity.Register(ctx, caller, role, hash, req.Stake)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, user)
}

type addRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) handleAddRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.identity.AddRole(ctx, requestcontext.Caller(ctx), role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	ProfileHash string `json:"profile_hash"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	hash, err := domain.ParseContentHash(req.ProfileHash)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.identity.UpdateProfile(ctx, requestcontext.Caller(ctx), hash)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleWithdrawStake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	amount, err := h.identity.WithdrawStake(ctx, requestcontext.Caller(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"withdrawn": amount})
}

func (h *Handler) handleToggleActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	target, err := domain.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	user, err := h.identity.ToggleActive(ctx, requestcontext.Caller(ctx), target)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := domain.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	user, err := h.identity.GetUser(ctx, principal)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleIsTrusted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := domain.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	trusted, err := h.identity.IsTrusted(ctx, principal)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"trusted": trusted})
}

type configRequest struct {
	Value uint64 `json:"value"`
}

func (h *Handler) handleSetMinStake(w http.ResponseWriter, r *http.Request) {
	h.handleConfig(w, r, h.identity.SetMinStake)
}

func (h *Handler) handleSetTrustThreshold(w http.ResponseWriter, r *http.Request) {
	h.handleConfig(w, r, h.identity.SetTrustThreshold)
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
