package users

import "github.com/go-chi/chi/v5"

// Routes returns the /users subrouter. Auth is applied by the caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}", h.ResetPassword)
	r.Delete("/{id}", h.Delete)
	return r
}
