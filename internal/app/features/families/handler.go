// internal/app/features/families/handler.go
package families

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apierrors "github.com/ehmughn/safelink-web-sub000/internal/app/features/errors"
	"github.com/ehmughn/safelink-web-sub000/internal/app/registry"
	"github.com/ehmughn/safelink-web-sub000/internal/app/safety"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/auth"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/normalize"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/ratelimit"
	"github.com/ehmughn/safelink-web-sub000/internal/app/watch"
	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
)

// Handler is the shared dependency container for the families feature.
// It holds the registry and safety services plus the watch hub so the
// membership, check-in, and live-stream handlers share one set of core
// dependencies.
type Handler struct {
	Registry *registry.Service
	Safety   *safety.Service
	Watch    watch.Watcher
	Log      *zap.Logger

	// Broadcasts, when set, rate-limits check-in requests per user.
	Broadcasts *ratelimit.Limiter

	// Joins, when set, rate-limits join attempts per client address.
	// The code space is only six digits, so unthrottled joins would
	// let one client enumerate it.
	Joins *ratelimit.Limiter
}

// NewHandler constructs a families Handler. It is typically called
// from the bootstrap BuildHandler function, where the services are
// already initialized.
func NewHandler(reg *registry.Service, saf *safety.Service, w watch.Watcher, logger *zap.Logger) *Handler {
	return &Handler{
		Registry: reg,
		Safety:   saf,
		Watch:    w,
		Log:      logger,
	}
}

// familyView is the JSON shape of a family. Members go out as an
// ordered list (oldest join first) rather than the stored map.
type familyView struct {
	Code      string          `json:"code"`
	CreatedAt time.Time       `json:"created_at"`
	CreatedBy string          `json:"created_by"`
	Members   []models.Member `json:"members"`
}

func viewOf(f *models.Family) familyView {
	return familyView{
		Code:      f.Code,
		CreatedAt: f.CreatedAt,
		CreatedBy: f.CreatedBy,
		Members:   f.MemberList(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleCreate handles POST /api/families.
// The caller becomes the founding admin member and is returned the
// shareable join code.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		apierrors.WriteStatus(w, http.StatusUnauthorized, "sign in required")
		return
	}

	code, err := h.Registry.CreateFamily(r.Context(), *id)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"code": code})
}

// HandleJoin handles POST /api/families/{code}/join.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		apierrors.WriteStatus(w, http.StatusUnauthorized, "sign in required")
		return
	}
	if h.Joins != nil && !h.Joins.Allow(ratelimit.ClientIP(r)) {
		apierrors.WriteStatus(w, http.StatusTooManyRequests, "too many join attempts, slow down")
		return
	}
	code := normalize.Code(chi.URLParam(r, "code"))

	if err := h.Registry.JoinFamily(r.Context(), code, *id); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"code": code})
}

// HandleLeave handles POST /api/families/{code}/leave.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		apierrors.WriteStatus(w, http.StatusUnauthorized, "sign in required")
		return
	}
	code := normalize.Code(chi.URLParam(r, "code"))

	if err := h.Registry.LeaveFamily(r.Context(), code, id.UserID); err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ServeFamily handles GET /api/families/{code}.
func (h *Handler) ServeFamily(w http.ResponseWriter, r *http.Request) {
	code := normalize.Code(chi.URLParam(r, "code"))

	f, err := h.Registry.GetFamily(r.Context(), code)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(f))
}

// HandleCheckIn handles POST /api/families/{code}/checkin.
// It broadcasts a "please report in" request to the family; members
// who stay silent past the answer window get swept to NO RESPONSE.
func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		apierrors.WriteStatus(w, http.StatusUnauthorized, "sign in required")
		return
	}
	if h.Broadcasts != nil && !h.Broadcasts.Allow(id.UserID) {
		apierrors.WriteStatus(w, http.StatusTooManyRequests, "too many check-in requests, slow down")
		return
	}
	code := normalize.Code(chi.URLParam(r, "code"))

	reqID, err := h.Safety.SendFamilyCheckIn(r.Context(), code, id.UserID, id.Name)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"request_id": reqID})
}

// ServeStream handles GET /api/families/{code}/stream.
//
// It is a server-sent-events endpoint: the current family document is
// sent immediately, then a fresh snapshot after every change, until the
// client disconnects. Rapid bursts of changes may be coalesced; the
// final state always arrives.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		apierrors.WriteStatus(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	code := normalize.Code(chi.URLParam(r, "code"))

	sub, err := h.Watch.Watch(r.Context(), code)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for u := range sub.Updates() {
		if u.Err != nil {
			// The family disappeared (or the snapshot failed); tell the
			// client and end the stream.
			fmt.Fprintf(w, "event: gone\ndata: {}\n\n")
			flusher.Flush()
			return
		}
		payload, err := json.Marshal(viewOf(u.Family))
		if err != nil {
			h.Log.Error("failed to encode family snapshot", zap.Error(err))
			return
		}
		fmt.Fprintf(w, "event: family\ndata: %s\n\n", payload)
		flusher.Flush()
	}
}
