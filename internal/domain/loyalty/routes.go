package loyalty

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stayrewards/stayrewards-api/internal/middleware"
)

// Routes returns loyalty router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public
	r.Get("/tiers", h.ListTiers)

	// Guest's own account
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.GetMyAccount)
		r.Get("/me/progress", h.GetMyProgress)
		r.Get("/me/transactions", h.ListMyTransactions)
		r.Get("/me/redemption-quote", h.GetRedemptionQuote)
		r.Post("/me/redeem", h.Redeem)
	})

	// Admin and booking back office
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin())
		r.Get("/accounts/{id}", h.GetAccount)
		r.Get("/accounts/{id}/transactions", h.ListAccountTransactions)
		r.Post("/accounts/{id}/earn", h.Earn)
		r.Post("/accounts/{id}/adjust", h.Adjust)
	})

	return r
}
