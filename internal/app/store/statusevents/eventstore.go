// internal/app/store/statusevents/eventstore.go
package eventstore

import (
	"context"

	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the append-only status-event log. Events are inserted and
// read, never updated or deleted; the member list on the family
// document is a mirror of the latest entries, the log is the truth.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("status_events")}
}

// Append writes one event.
func (s *Store) Append(ctx context.Context, ev models.StatusEvent) error {
	_, err := s.c.InsertOne(ctx, ev)
	return err
}

// ListByFamily returns the newest events for a family, newest first.
func (s *Store) ListByFamily(ctx context.Context, code string, limit int64) ([]models.StatusEvent, error) {
	return s.list(ctx, bson.M{"family_code": code}, limit)
}

// ListByUser returns the newest events recorded by one user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int64) ([]models.StatusEvent, error) {
	return s.list(ctx, bson.M{"user_id": userID}, limit)
}

func (s *Store) list(ctx context.Context, filter bson.M, limit int64) ([]models.StatusEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.StatusEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
