package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/service"
)

// AuthService defines the credential and session operations the HTTP edge
// needs.
type AuthService interface {
	SignUp(ctx context.Context, input service.SignUpInput) (service.Session, error)
	SignIn(ctx context.Context, email, password, clientIP string) (service.Session, error)
	Refresh(ctx context.Context, presented string) (service.Session, error)
	SignOut(ctx context.Context, presented string) error
	SignOutEverywhere(ctx context.Context, presented string) error
	Me(ctx context.Context, userID uuid.UUID) (model.UserView, error)
}

// Auth handles the credential endpoints under /api/auth.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	cookies        sessionCookies
	logger         *logger.Logger
}

func NewAuth(authService AuthService, contextManager model.ContextManager, cookieSecure bool, refreshTTL time.Duration, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		cookies:        sessionCookies{secure: cookieSecure, refreshTTL: refreshTTL},
		logger:         logger,
	}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// SignUp registers a user and opens a session.
func (h *Auth) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, model.NewErrValidation("", "malformed request body"))
		return
	}

	session, err := h.authService.SignUp(r.Context(), service.SignUpInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Info("Auth handler: sign-up rejected", "error", err.Error())
		respondError(w, h.logger, err)
		return
	}

	h.cookies.set(w, session.RefreshToken)
	respond(w, http.StatusCreated, session)
}

// SignIn verifies a credential and opens a session.
func (h *Auth) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, model.NewErrValidation("", "malformed request body"))
		return
	}

	session, err := h.authService.SignIn(r.Context(), req.Email, req.Password, clientIP(r))
	if err != nil {
		h.logger.Info("Auth handler: sign-in rejected", "error", err.Error())
		respondError(w, h.logger, err)
		return
	}

	h.cookies.set(w, session.RefreshToken)
	respond(w, http.StatusOK, session)
}

// Refresh rotates the presented refresh token. The token comes from the
// cookie when present, else from the JSON body.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	presented := h.refreshTokenFromRequest(r)
	if presented == "" {
		respondError(w, h.logger, model.ErrInvalidRefreshToken)
		return
	}

	session, err := h.authService.Refresh(r.Context(), presented)
	if err != nil {
		h.logger.Info("Auth handler: refresh rejected", "error", err.Error())
		h.cookies.clear(w)
		respondError(w, h.logger, err)
		return
	}

	h.cookies.set(w, session.RefreshToken)
	respond(w, http.StatusOK, session)
}

// SignOut revokes the presented refresh token. Always succeeds from the
// caller's point of view.
func (h *Auth) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOut(r.Context(), h.refreshTokenFromRequest(r)); err != nil {
		h.logger.Error("Auth handler: sign-out revocation failed", "error", err.Error())
	}

	h.cookies.clear(w)
	respond(w, http.StatusOK, map[string]bool{"success": true})
}

// SignOutAll revokes every session of the presented token's owner.
func (h *Auth) SignOutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOutEverywhere(r.Context(), h.refreshTokenFromRequest(r)); err != nil {
		h.logger.Error("Auth handler: sign-out-all revocation failed", "error", err.Error())
	}

	h.cookies.clear(w)
	respond(w, http.StatusOK, map[string]bool{"success": true})
}

// Me returns the authenticated user's public view.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	view, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respond(w, http.StatusOK, view)
}

func (h *Auth) refreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
