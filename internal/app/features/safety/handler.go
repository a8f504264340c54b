// internal/app/features/safety/handler.go
package safety

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	apierrors "github.com/ehmughn/safelink-web-sub000/internal/app/features/errors"
	safetysvc "github.com/ehmughn/safelink-web-sub000/internal/app/safety"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/auth"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/limits"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/normalize"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/ratelimit"
	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
)

const defaultHistoryLimit = 100

// Handler is the shared dependency container for the safety feature.
type Handler struct {
	Safety *safetysvc.Service
	Log    *zap.Logger

	// MaxHistory caps how many status events one request may return.
	MaxHistory int

	// SOS, when set, rate-limits SOS alerts per user.
	SOS *ratelimit.Limiter
}

// NewHandler constructs a safety Handler. maxHistory caps the event
// history page size regardless of the client's limit parameter.
func NewHandler(saf *safetysvc.Service, maxHistory int, logger *zap.Logger) *Handler {
	return &Handler{
		Safety:     saf,
		Log:        logger,
		MaxHistory: maxHistory,
	}
}

// reportBody is the optional JSON payload of a check-in or SOS.
type reportBody struct {
	Message  string           `json:"message"`
	Location *models.Location `json:"location"`
}

// decodeReport reads the request body into a Report. An empty body is
// fine; both fields are optional.
func decodeReport(w http.ResponseWriter, r *http.Request) (safetysvc.Report, error) {
	var body reportBody
	rd := http.MaxBytesReader(w, r.Body, limits.MaxReportSize)
	if err := json.NewDecoder(rd).Decode(&body); err != nil && err != io.EOF {
		return safetysvc.Report{}, err
	}
	return safetysvc.Report{
		Message:  body.Message,
		Location: body.Location,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleCheckIn handles POST /api/safety/checkin.
// The caller reports themselves SAFE to their family.
func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		apierrors.WriteStatus(w, http.StatusUnauthorized, "sign in required")
		return
	}
	rep, err := decodeReport(w, r)
	if err != nil {
		apierrors.WriteStatus(w, http.StatusBadRequest, "malformed request body")
		return
	}

	eventID, err := h.Safety.RecordSafeStatus(r.Context(), id.UserID, rep)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"event_id": eventID})
}

// HandleSOS handles POST /api/safety/sos.
// The caller signals DANGER to their family.
func (h *Handler) HandleSOS(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		apierrors.WriteStatus(w, http.StatusUnauthorized, "sign in required")
		return
	}
	if h.SOS != nil && !h.SOS.Allow(id.UserID) {
		apierrors.WriteStatus(w, http.StatusTooManyRequests, "too many SOS alerts, slow down")
		return
	}
	rep, err := decodeReport(w, r)
	if err != nil {
		apierrors.WriteStatus(w, http.StatusBadRequest, "malformed request body")
		return
	}

	alertID, err := h.Safety.SendSOSAlert(r.Context(), id.UserID, rep)
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"alert_id": alertID})
}

// ServeEvents handles GET /api/safety/events?code=XXXXXX&limit=N.
// It returns the family's status-event history, newest first. Without
// a code it falls back to the caller's own reported events.
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		apierrors.WriteStatus(w, http.StatusUnauthorized, "sign in required")
		return
	}
	code := normalize.Code(normalize.QueryParam(r.URL.Query().Get("code")))

	limit := int64(defaultHistoryLimit)
	if raw := normalize.QueryParam(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			apierrors.WriteStatus(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if max := int64(h.MaxHistory); max > 0 && limit > max {
		limit = max
	}

	var (
		events []models.StatusEvent
		err    error
	)
	if code == "" {
		events, err = h.Safety.UserEventHistory(r.Context(), id.UserID, limit)
	} else {
		events, err = h.Safety.EventHistory(r.Context(), code, limit)
	}
	if err != nil {
		apierrors.Write(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
