// internal/domain/models/family.go
package models

import (
	"sort"
	"time"
)

// Family is a group of users who share safety-status visibility.
//
// NOTE:
//   - The 6-digit join code is the document _id: it is assigned exactly
//     once at creation and doubles as the shareable invitation token.
//   - Members is a map keyed by userId so a single member can be
//     addressed with a "members.<uid>" field path. Display order is
//     recovered by sorting on JoinedAt (see MemberList).
type Family struct {
	Code      string            `bson:"_id" json:"code"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
	CreatedBy string            `bson:"created_by" json:"created_by"`
	Members   map[string]Member `bson:"members" json:"members"`
}

// Member is one user's membership record inside a Family. Name and
// Email are snapshots taken at join time; they are not kept in sync
// with later profile edits.
type Member struct {
	UserID     string    `bson:"user_id" json:"user_id"`
	Name       string    `bson:"name" json:"name"`
	Email      string    `bson:"email" json:"email"`
	Status     string    `bson:"status" json:"status"`
	LastUpdate time.Time `bson:"last_update" json:"last_update"`
	IsAdmin    bool      `bson:"is_admin" json:"is_admin"`
	JoinedAt   time.Time `bson:"joined_at" json:"joined_at"`
}

// MemberList returns the members ordered by join time (oldest first).
// Ties fall back to userId so the order is stable.
func (f *Family) MemberList() []Member {
	out := make([]Member, 0, len(f.Members))
	for _, m := range f.Members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

// HasMember reports whether userID currently belongs to the family.
func (f *Family) HasMember(userID string) bool {
	_, ok := f.Members[userID]
	return ok
}
