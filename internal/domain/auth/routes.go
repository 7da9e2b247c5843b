package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers auth routes. adminAuth protects the /me endpoint.
func (h *Handler) Routes(adminAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(adminAuth)
		r.Get("/me", h.Me)
	})

	return r
}
