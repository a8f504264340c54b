// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/ehmughn/safelink-web-sub000/internal/app/registry"
	familystore "github.com/ehmughn/safelink-web-sub000/internal/app/store/families"
	"go.uber.org/zap"
)

// body is the JSON envelope every error response uses.
type body struct {
	Error string `json:"error"`
}

// Write maps a service error to an HTTP status and writes the JSON
// error body. Unrecognized errors become 500 with a generic message so
// store details never leak to clients; the real error goes to the log.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		msg = "internal error"
	}
	WriteStatus(w, status, msg)
}

// WriteStatus writes an error body with an explicit status code.
func WriteStatus(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body{Error: msg})
}

func classify(err error) (int, string) {
	switch {
	case stderrors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound, "family not found"
	case stderrors.Is(err, registry.ErrMemberNotFound):
		return http.StatusNotFound, "member not found"
	case stderrors.Is(err, registry.ErrAlreadyMember):
		return http.StatusConflict, "already a member of this family"
	case stderrors.Is(err, registry.ErrNotInFamily):
		return http.StatusConflict, "not in a family"
	case stderrors.Is(err, registry.ErrInvalidCode):
		return http.StatusBadRequest, "invalid family code"
	case stderrors.Is(err, registry.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid status"
	case stderrors.Is(err, familystore.ErrBadUserID):
		return http.StatusBadRequest, "invalid user id"
	case stderrors.Is(err, registry.ErrCodeSpaceExhausted):
		return http.StatusServiceUnavailable, "could not allocate a family code, try again later"
	default:
		return http.StatusInternalServerError, ""
	}
}
