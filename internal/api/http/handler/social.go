package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/service"
)

// Provider is a configured identity provider.
type Provider interface {
	AuthURL(state string) string
	FetchProfile(ctx context.Context, code string) (model.FederatedProfile, error)
}

// StateService issues and consumes the single-use nonces binding an
// initiated federated login to its callback.
type StateService interface {
	Create(ctx context.Context, provider string) (string, error)
	ValidateAndConsume(ctx context.Context, state, provider string) bool
}

// FederatedAuthService turns a verified provider profile into a session.
type FederatedAuthService interface {
	FederatedSignIn(ctx context.Context, profile model.FederatedProfile) (service.Session, error)
}

// Social handles the federated sign-in endpoints.
type Social struct {
	providers    map[string]Provider
	stateService StateService
	authService  FederatedAuthService
	cookies      sessionCookies
	logger       *logger.Logger
}

func NewSocial(providers map[string]Provider, stateService StateService, authService FederatedAuthService, cookieSecure bool, refreshTTL time.Duration, logger *logger.Logger) *Social {
	return &Social{
		providers:    providers,
		stateService: stateService,
		authService:  authService,
		cookies:      sessionCookies{secure: cookieSecure, refreshTTL: refreshTTL},
		logger:       logger,
	}
}

// Initiate redirects the user to the provider's consent page with a fresh
// state nonce.
func (h *Social) Initiate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, ok := h.providers[name]
	if !ok {
		respond(w, http.StatusNotFound, errorResponse{Error: "unknown provider"})
		return
	}

	state, err := h.stateService.Create(r.Context(), name)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Debug("Social handler: redirecting to provider", "provider", name)

	http.Redirect(w, r, provider.AuthURL(state), http.StatusFound)
}

// Callback consumes the state nonce, resolves the authorization code into a
// profile and opens a session. A missing, forged or replayed state fails
// before any provider call is made.
func (h *Social) Callback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, ok := h.providers[name]
	if !ok {
		respond(w, http.StatusNotFound, errorResponse{Error: "unknown provider"})
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		respond(w, http.StatusUnauthorized, errorResponse{Error: "missing state or code"})
		return
	}

	if !h.stateService.ValidateAndConsume(r.Context(), state, name) {
		h.logger.Info("Social handler: state rejected", "provider", name)
		respond(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired state"})
		return
	}

	profile, err := provider.FetchProfile(r.Context(), code)
	if err != nil {
		h.logger.Error("Social handler: profile fetch failed",
			"provider", name,
			"error", err.Error())
		respond(w, http.StatusUnauthorized, errorResponse{Error: "provider authentication failed"})
		return
	}

	session, err := h.authService.FederatedSignIn(r.Context(), profile)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.cookies.set(w, session.RefreshToken)
	respond(w, http.StatusOK, session)
}
