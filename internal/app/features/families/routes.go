// internal/app/features/families/routes.go
package families

import (
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, v *auth.Verifier) chi.Router {
	r := chi.NewRouter()

	// Everything under /families requires a verified identity.
	r.Group(func(pr chi.Router) {
		pr.Use(v.RequireIdentity)

		// CREATE
		pr.Post("/", h.HandleCreate)

		// MEMBERSHIP
		pr.Post("/{code}/join", h.HandleJoin)
		pr.Post("/{code}/leave", h.HandleLeave)

		// VIEW
		pr.Get("/{code}", h.ServeFamily)

		// LIVE VIEW (SSE)
		pr.Get("/{code}/stream", h.ServeStream)

		// CHECK-IN REQUEST
		pr.Post("/{code}/checkin", h.HandleCheckIn)
	})

	return r
}
