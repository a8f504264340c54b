// internal/app/store/families/familystore.go
package familystore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store persists families. The 6-digit join code is the document _id,
// and members live in a map keyed by userId so a single member can be
// updated or removed with one conditional write. Concurrent updates
// to different members never read-modify-rewrite the whole document,
// so they cannot clobber each other.
type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound       = errors.New("family not found")
	ErrCodeTaken      = errors.New("join code already assigned to another family")
	ErrAlreadyMember  = errors.New("user is already a member of this family")
	ErrMemberNotFound = errors.New("user is not a member of this family")
	ErrBadUserID      = errors.New("user id cannot be used as a member key")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("families")}
}

// memberField builds the "members.<uid>" field path for a user. The
// userId comes from the identity provider and must be usable as a BSON
// key: no dots, no leading '$', no NUL.
func memberField(userID string) (string, error) {
	if userID == "" || strings.ContainsAny(userID, ".\x00") || userID[0] == '$' {
		return "", ErrBadUserID
	}
	return "members." + userID, nil
}

// Insert creates a new family document. The unique _id constraint is
// the arbiter of code uniqueness; a collision surfaces as ErrCodeTaken
// and the registry retries with a fresh code.
func (s *Store) Insert(ctx context.Context, f models.Family) error {
	_, err := s.c.InsertOne(ctx, f)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrCodeTaken
		}
		return err
	}
	return nil
}

// GetByCode loads a family by join code.
func (s *Store) GetByCode(ctx context.Context, code string) (*models.Family, error) {
	var f models.Family
	if err := s.c.FindOne(ctx, bson.M{"_id": code}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// AddMember appends m to the family in a single conditional write: the
// filter requires the member key to be absent, so two racing joins for
// the same user cannot both append, and joins for different users
// commute. When the write matches nothing, a follow-up read splits
// ErrNotFound from ErrAlreadyMember.
func (s *Store) AddMember(ctx context.Context, code string, m models.Member) error {
	field, err := memberField(m.UserID)
	if err != nil {
		return err
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": code, field: bson.M{"$exists": false}},
		bson.M{"$set": bson.M{field: m}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetByCode(ctx, code); err != nil {
			return err
		}
		return ErrAlreadyMember
	}
	return nil
}

// RemoveMember deletes the member entry by userId key. Removal never
// compares the whole member value, so a status update between read and
// leave cannot turn the removal into a silent no-op.
func (s *Store) RemoveMember(ctx context.Context, code, userID string) error {
	field, err := memberField(userID)
	if err != nil {
		return err
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": code, field: bson.M{"$exists": true}},
		bson.M{"$unset": bson.M{field: ""}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetByCode(ctx, code); err != nil {
			return err
		}
		return ErrMemberNotFound
	}
	return nil
}

// SetMemberStatus updates one member's status and last_update with a
// keyed partial write.
func (s *Store) SetMemberStatus(ctx context.Context, code, userID, status string, at time.Time) error {
	field, err := memberField(userID)
	if err != nil {
		return err
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": code, field: bson.M{"$exists": true}},
		bson.M{"$set": bson.M{
			field + ".status":      status,
			field + ".last_update": at,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetByCode(ctx, code); err != nil {
			return err
		}
		return ErrMemberNotFound
	}
	return nil
}

// MarkNoResponseBefore flips one member to NO RESPONSE only if their
// last_update predates cutoff. Returns whether the member was flipped.
// The condition lives in the filter, so a check-in racing the sweep
// wins: once last_update advances past the cutoff the write matches
// nothing.
func (s *Store) MarkNoResponseBefore(ctx context.Context, code, userID, noResponse string, cutoff, at time.Time) (bool, error) {
	field, err := memberField(userID)
	if err != nil {
		return false, err
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": code, field + ".last_update": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{
			field + ".status":      noResponse,
			field + ".last_update": at,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
