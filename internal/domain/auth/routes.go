package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns auth router. loginLimiter guards the credential endpoints.
func (h *Handler) Routes(authMiddleware, loginLimiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public routes (no auth required)
	r.Group(func(r chi.Router) {
		r.Use(loginLimiter)
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
	})

	// Protected routes (auth required)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.Me)
	})

	return r
}
