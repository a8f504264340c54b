// internal/domain/models/checkin.go
package models

import "time"

// CheckInRequest is a broadcast asking every member of a family to
// report their status.
//
// NOTE:
//   - Responses is modeled but nothing appends to it yet; members answer
//     by recording a status, and the staleness sweep marks everyone who
//     stayed silent as NO RESPONSE.
//   - SweptAt records when the staleness sweep processed the request so
//     a request is swept at most once.
type CheckInRequest struct {
	ID            string            `bson:"_id" json:"id"`
	FamilyCode    string            `bson:"family_code" json:"family_code"`
	RequesterID   string            `bson:"requester_id" json:"requester_id"`
	RequesterName string            `bson:"requester_name" json:"requester_name"`
	Timestamp     time.Time         `bson:"timestamp" json:"timestamp"`
	Responses     []CheckInResponse `bson:"responses" json:"responses"`
	SweptAt       *time.Time        `bson:"swept_at,omitempty" json:"swept_at,omitempty"`
}

// CheckInResponse is a member's answer to a check-in request.
type CheckInResponse struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	Status    string    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
