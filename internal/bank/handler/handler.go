// Package handler exposes the token ledger over HTTP.
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

// Service defines the ledger operations the handler fronts.
type Service interface {
	Deposit(ctx context.Context, caller, account domain.Principal, amount uint64) error
	Balance(ctx context.Context, account domain.Principal) uint64
}

// Handler handles bank endpoints.
type Handler struct {
	bank   Service
	logger *slog.Logger
}

// New creates the bank Handler.
func New(bank Service, logger *slog.Logger) *Handler {
	return &Handler{bank: bank, logger: logger}
}

// Register registers the bank routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/bank/deposits", h.handleDeposit)
	r.Get("/bank/accounts/{principal}", h.handleBalance)
}

type depositRequest struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	account, err := domain.ParsePrincipal(req.Account)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.bank.Deposit(ctx, requestcontext.Caller(ctx), account, req.Amount); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := domain.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{
		"balance": h.bank.Balance(ctx, account),
	})
}
