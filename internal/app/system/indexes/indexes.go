// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

Families and profiles key all reads and writes off _id, which Mongo
indexes on its own, so only the two append-heavy collections need
explicit indexes.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureStatusEvents(ctx, db); err != nil {
		problems = append(problems, "status_events: "+err.Error())
	}
	if err := ensureCheckInRequests(ctx, db); err != nil {
		problems = append(problems, "checkin_requests: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ensureStatusEvents backs the family and per-user history reads,
// both newest first.
func ensureStatusEvents(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("status_events").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "family_code", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("family_code_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("user_id_timestamp"),
		},
	})
	return err
}

// ensureCheckInRequests backs the family history read and the
// staleness sweep's unswept scan.
func ensureCheckInRequests(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("checkin_requests").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "family_code", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("family_code_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "swept_at", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("swept_at_timestamp"),
		},
	})
	return err
}
