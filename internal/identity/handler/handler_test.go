package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"scholarchain/internal/authority"
	"scholarchain/internal/bank"
	"scholarchain/internal/chain"
	"scholarchain/internal/identity/service"
	"scholarchain/internal/identity/store"
	"scholarchain/internal/platform/middleware"
	"scholarchain/internal/token"
	"scholarchain/pkg/domain"
)

const signingKey = "test-signing-key"

func TestRegisterViaHandler(t *testing.T) {
	router, tokens, _ := newIdentityRouter(t)

	payload := map[string]any{
		"role":         "author",
		"profile_hash": strings.Repeat("a", 64),
		"stake":        1000,
	}
	rec := doJSON(t, router, tokens, http.MethodPost, "/identity/register", "0xalice", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 registering, got %d: %s", rec.Code, rec.Body.String())
	}

	var user struct {
		Principal string   `json:"principal"`
		Roles     []string `json:"roles"`
		Stake     uint64   `json:"stake"`
		Active    bool     `json:"active"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("failed to decode user response: %v", err)
	}
	if user.Principal != "0xalice" || !user.Active || user.Stake != 1000 {
		t.Fatalf("unexpected user response: %+v", user)
	}
	if len(user.Roles) != 1 || user.Roles[0] != "author" {
		t.Fatalf("expected roles [author], got %v", user.Roles)
	}

	getRec := doJSON(t, router, tokens, http.MethodGet, "/identity/users/0xalice", "0xalice", nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching user, got %d", getRec.Code)
	}
}

func TestRegisterRejectsBadHash(t *testing.T) {
	router, tokens, _ := newIdentityRouter(t)

	payload := map[string]any{
		"role":         "author",
		"profile_hash": "nothex",
		"stake":        1000,
	}
	rec := doJSON(t, router, tokens, http.MethodPost, "/identity/register", "0xalice", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short hash, got %d", rec.Code)
	}
}

func TestRegisterTwiceConflicts(t *testing.T) {
	router, tokens, _ := newIdentityRouter(t)

	payload := map[string]any{
		"role":         "author",
		"profile_hash": strings.Repeat("a", 64),
		"stake":        1000,
	}
	if rec := doJSON(t, router, tokens, http.MethodPost, "/identity/register", "0xalice", payload); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first register, got %d", rec.Code)
	}
	rec := doJSON(t, router, tokens, http.MethodPost, "/identity/register", "0xalice", payload)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate register, got %d", rec.Code)
	}
}

func TestUnknownUserIs404(t *testing.T) {
	router, tokens, _ := newIdentityRouter(t)

	rec := doJSON(t, router, tokens, http.MethodGet, "/identity/users/0xghost", "0xalice", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	router, _, _ := newIdentityRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/identity/users/0xalice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestConfigSetterForbiddenWithoutAuthority(t *testing.T) {
	router, tokens, _ := newIdentityRouter(t)

	rec := doJSON(t, router, tokens, http.MethodPut, "/identity/config/min-stake", "0xalice", map[string]any{"value": 500})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without identity authority, got %d", rec.Code)
	}
}

func newIdentityRouter(t *testing.T) (http.Handler, *token.Service, *bank.Ledger) {
	t.Helper()
	exec := chain.NewExecutor(chain.NewClock())
	ledger := bank.NewLedger()
	svc := service.New(store.NewInMemory(), ledger, authority.NewRegistry(), exec, 1000, 5000)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	tokens := token.NewService(signingKey)

	// Everyone starts funded so handler tests exercise HTTP concerns, not
	// ledger balances.
	for _, p := range []string{"0xalice", "0xbob"} {
		ledger.Deposit(context.Background(), domain.Principal(p), 10_000)
	}

	h := New(svc, logger)
	r := chi.NewRouter()
	r.Use(middleware.RequireAuth(tokens, logger))
	h.Register(r)
	return r, tokens, ledger
}

func doJSON(t *testing.T, router http.Handler, tokens *token.Service, method, path, principal string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	bearer, err := tokens.Issue(domain.Principal(principal), time.Minute)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
