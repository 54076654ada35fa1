package auth

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/dalemusser/flockhub/internal/app/system/auth"
)

// Routes returns the /auth subrouter. Login and refresh are open; profile
// and change-password require a bearer token.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(sysauth.RequireAuth(h.Tokens, h.Log))
		r.Get("/profile", h.Profile)
		r.Patch("/change-password", h.ChangePassword)
	})
	return r
}
