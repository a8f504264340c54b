// internal/domain/models/profile.go
package models

import "time"

// Profile is the slice of a user's account this service owns: the
// pointer from a user to the one family they belong to, plus the
// display fields snapshotted onto Member records at join time.
//
// Identity (the userId itself) comes from the external auth provider
// and is trusted as given.
type Profile struct {
	UserID     string    `bson:"_id" json:"user_id"`
	Name       string    `bson:"name" json:"name"`
	Email      string    `bson:"email" json:"email"`
	FamilyCode string    `bson:"family_code,omitempty" json:"family_code,omitempty"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// InFamily reports whether the profile currently points at a family.
func (p *Profile) InFamily() bool {
	return p.FamilyCode != ""
}
