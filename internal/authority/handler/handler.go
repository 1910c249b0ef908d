// Package handler exposes authority bindings over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scholarchain/internal/transport/http/shared"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
	"scholarchain/pkg/requestcontext"
)

// Service defines the binding operations the handler fronts.
type Service interface {
	Bind(ctx context.Context, caller domain.Principal, module string, principal domain.Principal) error
	Authority(module string) (domain.Principal, bool)
}

// Handler handles authority endpoints.
type Handler struct {
	authority Service
	logger    *slog.Logger
}

// New creates the authority Handler.
func New(authority Service, logger *slog.Logger) *Handler {
	return &Handler{authority: authority, logger: logger}
}

// Register registers the authority routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/authority/bindings", h.handleBind)
	r.Get("/authority/bindings/{module}", h.handleGet)
}

type bindRequest struct {
	Module    string `json:"module"`
	Principal string `json:"principal"`
}

func (h *Handler) handleBind(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req bindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	principal, err := domain.ParsePrincipal(req.Principal)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.authority.Bind(ctx, requestcontext.Caller(ctx), req.Module, principal); err != nil {
		h.logger.WarnContext(ctx, "binding rejected",
			"module", req.Module,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	module := chi.URLParam(r, "module")
	principal, ok := h.authority.Authority(module)
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "authority not set"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"module":    module,
		"principal": principal.String(),
	})
}
