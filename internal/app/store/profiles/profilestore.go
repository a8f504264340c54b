// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"time"

	"github.com/ehmughn/safelink-web-sub000/internal/app/system/normalize"
	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists the per-user profile slice this service owns: the
// family_code pointer plus the display fields. The userId (from the
// identity provider) is the document _id. All writes are field-level
// merges; unrelated profile fields written by other systems are never
// overwritten.
type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("profile not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

// GetByID loads a profile by userId.
func (s *Store) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"_id": userID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SetFamily points the user at a family, upserting the profile if the
// identity provider created the account but no profile document exists
// yet. Name and email are refreshed from the identity at the same time.
func (s *Store) SetFamily(ctx context.Context, userID, name, email, code string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"family_code": code,
			"name":        normalize.Name(name),
			"email":       normalize.Email(email),
			"updated_at":  time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// ClearFamily removes the family pointer. Clearing an absent profile
// or an already-cleared pointer is a no-op.
func (s *Store) ClearFamily(ctx context.Context, userID string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$unset": bson.M{"family_code": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}
