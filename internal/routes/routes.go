package routes

import (
	"log/slog"
	"net/http"

	"github.com/BradenHooton/wakeguard/internal/auth"
	"github.com/BradenHooton/wakeguard/internal/handlers"
	"github.com/BradenHooton/wakeguard/internal/middleware"
	"github.com/BradenHooton/wakeguard/internal/services"
	pkghttp "github.com/BradenHooton/wakeguard/pkg/http"
	"github.com/go-chi/chi/v5"
)

// Dependencies is everything the route table wires together
type Dependencies struct {
	AuthHandler     *handlers.AuthHandler
	WakeHandler     *handlers.WakeHandler
	HealthHandler   *handlers.HealthHandler
	Authenticator   auth.SessionAuthenticator
	Tokens          *auth.SessionTokenManager
	Cookies         auth.CookieConfig
	State           *services.SecurityState
	IPConfig        *pkghttp.IPConfig
	GlobalPerMinute int
	Logger          *slog.Logger
}

// RegisterRoutes mounts the JSON API under /api
func RegisterRoutes(router chi.Router, deps Dependencies) {
	requireAuth := auth.RequireAuth(deps.Authenticator, deps.Tokens, deps.Cookies, deps.IPConfig)

	loginLimit := middleware.RateLimitByIP(deps.State.LoginLimiter, deps.IPConfig, middleware.RateLimitConfig{
		Message: "Too many login attempts. Please try again later.",
		EchoIP:  true,
	}, deps.Logger)
	wakeLimit := middleware.RateLimitByIP(deps.State.WakeLimiter, deps.IPConfig, middleware.RateLimitConfig{
		Message: "Too many wake requests. Please wait a moment.",
	}, deps.Logger)
	statusLimit := middleware.RateLimitByIP(deps.State.StatusLimiter, deps.IPConfig, middleware.RateLimitConfig{
		Message: "Too many status checks. Please wait a moment.",
	}, deps.Logger)

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.GlobalRateLimit(deps.GlobalPerMinute, deps.IPConfig))

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteNotFound(w, "Endpoint not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		})

		// Public routes
		r.Get("/health", deps.HealthHandler.Health)
		r.With(loginLimit).Post("/auth/login", deps.AuthHandler.Login)
		r.Post("/auth/logout", deps.AuthHandler.Logout)
		r.Get("/auth/status", deps.AuthHandler.Status)

		// Protected routes. Authentication runs before the route limiter so
		// anonymous callers cannot drain the budget.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/auth/sessions", deps.AuthHandler.Sessions)
			r.With(wakeLimit).Post("/wake", deps.WakeHandler.Wake)
			r.With(statusLimit).Get("/status", deps.WakeHandler.Status)
		})
	})
}
