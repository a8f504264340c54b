// internal/app/features/safety/routes.go
package safety

import (
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, v *auth.Verifier) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(v.RequireIdentity)

		pr.Post("/checkin", h.HandleCheckIn)
		pr.Post("/sos", h.HandleSOS)
		pr.Get("/events", h.ServeEvents)
	})

	return r
}
