package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/auth"
)

// Router assembles the HTTP routes for the landing auth API.
type Router struct {
	authHandler   *AuthHandler
	uploadHandler *UploadHandler
	healthHandler *HealthHandler
	tokens        *auth.TokenManager
	rateLimiter   *RateLimiter
	maxBodySize   int64
	logger        zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AuthHandler   *AuthHandler
	UploadHandler *UploadHandler
	HealthHandler *HealthHandler
	Tokens        *auth.TokenManager

	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *RateLimiter

	MaxBodySize int64
	Logger      zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		authHandler:   cfg.AuthHandler,
		uploadHandler: cfg.UploadHandler,
		healthHandler: cfg.HealthHandler,
		tokens:        cfg.Tokens,
		rateLimiter:   cfg.RateLimiter,
		maxBodySize:   cfg.MaxBodySize,
		logger:        cfg.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(rt.logger))
	r.Use(Recoverer(rt.logger))
	r.Use(Instrument)
	r.Use(MaxBodySize(rt.maxBodySize))

	// Probes, no auth
	r.Get("/health", rt.healthHandler.Health)
	r.Get("/ready", rt.healthHandler.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Code-issuing endpoints get the rate limit
			r.Group(func(r chi.Router) {
				r.Use(rt.limit("register"))
				r.Post("/register", rt.authHandler.Register)
			})
			r.Group(func(r chi.Router) {
				r.Use(rt.limit("login-request"))
				r.Post("/login-request", rt.authHandler.LoginRequest)
			})

			r.Post("/activate/{userID}", rt.authHandler.Activate)
			r.Post("/login-validate", rt.authHandler.LoginValidate)

			// Session required
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(rt.tokens, rt.logger))
				r.Get("/me", rt.authHandler.Me)
				r.Post("/complete-profile", rt.authHandler.CompleteProfile)
			})
		})

		r.Route("/upload", func(r chi.Router) {
			r.Use(auth.Middleware(rt.tokens, rt.logger))
			r.Post("/character", rt.uploadHandler.UploadCharacter)
			r.Get("/character", rt.uploadHandler.GetCharacter)
			r.Post("/character/process", rt.uploadHandler.ProcessCharacter)
			r.Get("/character/history", rt.uploadHandler.AnalysisHistory)
		})
	})

	return r
}

// limit returns the rate limit middleware for the named endpoint, or a
// pass-through when limiting is disabled.
func (rt *Router) limit(name string) func(http.Handler) http.Handler {
	if rt.rateLimiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rt.rateLimiter.Limit(name)
}
