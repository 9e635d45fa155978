// Package router assembles the HTTP API from handlers and middleware.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dtroode/authkeeper/internal/api/http/handler"
	"github.com/dtroode/authkeeper/internal/api/http/middleware"
	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/service"
)

// Router wires the auth services into the chi routing tree.
type Router struct {
	authService    *service.Auth
	tokenService   *service.TokenService
	stateService   *service.StateManager
	providers      map[string]handler.Provider
	contextManager model.ContextManager
	cookieSecure   bool
	refreshTTL     time.Duration
	logger         *logger.Logger
}

func New(
	authService *service.Auth,
	tokenService *service.TokenService,
	stateService *service.StateManager,
	providers map[string]handler.Provider,
	contextManager model.ContextManager,
	cookieSecure bool,
	refreshTTL time.Duration,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		tokenService:   tokenService,
		stateService:   stateService,
		providers:      providers,
		contextManager: contextManager,
		cookieSecure:   cookieSecure,
		refreshTTL:     refreshTTL,
		logger:         logger,
	}
}

// Register builds the routing tree. All endpoints live under /api/auth;
// only /me requires a bearer token.
func (rt *Router) Register() http.Handler {
	logging := middleware.NewLogging(rt.logger)
	authenticate := middleware.NewAuthenticate(rt.tokenService, rt.contextManager, rt.logger)

	authHandler := handler.NewAuth(rt.authService, rt.contextManager, rt.cookieSecure, rt.refreshTTL, rt.logger)
	socialHandler := handler.NewSocial(rt.providers, rt.stateService, rt.authService, rt.cookieSecure, rt.refreshTTL, rt.logger)

	r := chi.NewRouter()
	r.Use(logging.Handle)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/sign-up", authHandler.SignUp)
		r.Post("/sign-in", authHandler.SignIn)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/sign-out", authHandler.SignOut)
		r.Post("/sign-out-all", authHandler.SignOutAll)

		r.Group(func(r chi.Router) {
			r.Use(authenticate.Handle)
			r.Get("/me", authHandler.Me)
		})

		r.Get("/{provider}", socialHandler.Initiate)
		r.Get("/{provider}/callback", socialHandler.Callback)
	})

	return r
}
