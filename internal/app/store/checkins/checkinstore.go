// internal/app/store/checkins/checkinstore.go
package checkinstore

import (
	"context"
	"time"

	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists check-in broadcast requests. Requests are written
// once and later stamped by the staleness sweep; the Responses array
// is reserved for a future response-collection protocol.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("checkin_requests")}
}

// Create writes a new check-in request.
func (s *Store) Create(ctx context.Context, cr models.CheckInRequest) error {
	_, err := s.c.InsertOne(ctx, cr)
	return err
}

// ListByFamily returns a family's requests, newest first.
func (s *Store) ListByFamily(ctx context.Context, code string, limit int64) ([]models.CheckInRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"family_code": code}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reqs []models.CheckInRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// ListUnswept returns requests older than `before` that the staleness
// sweep has not processed yet, oldest first.
func (s *Store) ListUnswept(ctx context.Context, before time.Time) ([]models.CheckInRequest, error) {
	cur, err := s.c.Find(ctx,
		bson.M{
			"swept_at":  bson.M{"$exists": false},
			"timestamp": bson.M{"$lte": before},
		},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reqs []models.CheckInRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// MarkSwept stamps a request as processed so it is swept at most once.
func (s *Store) MarkSwept(ctx context.Context, id string, at time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"swept_at": at}},
	)
	return err
}
