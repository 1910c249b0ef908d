// Package handler exposes the token entry point. Principal possession is
// asserted by the gateway in front of this service; the endpoint exists so
// local and test deployments can mint bearer tokens without one.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scholarchain/internal/transport/http/shared"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
)

const tokenTTL = time.Hour

// Issuer mints principal bearer tokens.
type Issuer interface {
	Issue(principal domain.Principal, expiresIn time.Duration) (string, error)
}

// Handler handles token issuance.
type Handler struct {
	issuer Issuer
	logger *slog.Logger
}

// New creates the token Handler.
func New(issuer Issuer, logger *slog.Logger) *Handler {
	return &Handler{issuer: issuer, logger: logger}
}

// Register registers the token route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/token", h.handleIssue)
}

type issueRequest struct {
	Principal string `json:"principal"`
}

type issueResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	principal, err := domain.ParsePrincipal(req.Principal)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	signed, err := h.issuer.Issue(principal, tokenTTL)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "token signing failed", "error", err.Error())
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to issue token"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, issueResponse{
		Token:     signed,
		ExpiresIn: int64(tokenTTL.Seconds()),
	})
}
