package health

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter that serves the liveness endpoint.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve) // mounted at both / and /healthz
	return r
}
