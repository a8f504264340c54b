// internal/domain/models/statusevent.go
package models

import "time"

// StatusEvent is an append-only audit record of a status-affecting
// action (manual check-in or SOS). Events are never mutated or deleted.
type StatusEvent struct {
	ID         string    `bson:"_id" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	FamilyCode string    `bson:"family_code" json:"family_code"`
	Status     string    `bson:"status" json:"status"`
	Type       string    `bson:"type" json:"type"`
	Severity   string    `bson:"severity,omitempty" json:"severity,omitempty"`
	Message    string    `bson:"message,omitempty" json:"message,omitempty"`
	Location   *Location `bson:"location,omitempty" json:"location,omitempty"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
}

// Location is an optional position attached to a status event.
type Location struct {
	Latitude   float64   `bson:"latitude" json:"latitude"`
	Longitude  float64   `bson:"longitude" json:"longitude"`
	Accuracy   float64   `bson:"accuracy,omitempty" json:"accuracy,omitempty"`
	CapturedAt time.Time `bson:"captured_at,omitempty" json:"captured_at,omitempty"`
}
