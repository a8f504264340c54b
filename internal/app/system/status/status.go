// internal/app/system/status/status.go

// Package status defines the safety-status vocabulary shared by the
// family registry, the status propagation service, and the stores.
package status

// Member safety states. Unknown is the zero value for a member that has
// never reported; the wire form matches what the original product
// displays, including the space in "NO RESPONSE".
const (
	Safe       = "SAFE"
	Danger     = "DANGER"
	NoResponse = "NO RESPONSE"
	Unknown    = ""
)

// Status-event types. An SOS deliberately produces two events: the
// alert itself (TypeSOSAlert) and a generic status-stream entry
// (TypeSOSStatus); both are kept for history.
const (
	TypeManualCheckIn = "manual_checkin"
	TypeSOSAlert      = "sos_alert"
	TypeSOSStatus     = "sos_status"
)

// Severity levels for status events.
const (
	SeverityCritical = "critical"
)

// Valid reports whether s is a writable member status. Unknown is a
// read-side default and is never written explicitly.
func Valid(s string) bool {
	switch s {
	case Safe, Danger, NoResponse:
		return true
	}
	return false
}
