// internal/app/watch/changestream.go
package watch

import (
	"context"
	"sync"
	"time"

	familystore "github.com/ehmughn/safelink-web-sub000/internal/app/store/families"
	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// reopenDelay paces change-stream reconnects after an error.
const reopenDelay = 2 * time.Second

// ChangeStreamSource tails the families collection's change stream and
// publishes every document change into the hub. Requires a replica-set
// or mongos deployment; on standalone servers Start logs the failure
// and keeps retrying, so live views degrade to initial snapshots only.
type ChangeStreamSource struct {
	col    *mongo.Collection
	hub    *Hub
	log    *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewChangeStreamSource(db *mongo.Database, hub *Hub, logger *zap.Logger) *ChangeStreamSource {
	return &ChangeStreamSource{
		col: db.Collection("families"),
		hub: hub,
		log: logger,
	}
}

// Start begins tailing in the background.
func (s *ChangeStreamSource) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(ctx)
	s.log.Info("family change stream source started")
}

// Stop tears down the stream and waits for the tail goroutine.
func (s *ChangeStreamSource) Stop() {
	s.cancel()
	s.wg.Wait()
	s.log.Info("family change stream source stopped")
}

func (s *ChangeStreamSource) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		if err := s.consume(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn("family change stream interrupted", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reopenDelay):
		}
	}
}

func (s *ChangeStreamSource) consume(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}},
		}}},
	}
	cs, err := s.col.Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return err
	}
	defer cs.Close(context.Background())

	for cs.Next(ctx) {
		var ev struct {
			OperationType string `bson:"operationType"`
			DocumentKey   struct {
				Code string `bson:"_id"`
			} `bson:"documentKey"`
			FullDocument *models.Family `bson:"fullDocument"`
		}
		if err := cs.Decode(&ev); err != nil {
			s.log.Warn("undecodable family change event", zap.Error(err))
			continue
		}

		switch {
		case ev.OperationType == "delete":
			s.hub.Publish(ev.DocumentKey.Code, Update{Err: familystore.ErrNotFound})
		case ev.FullDocument != nil:
			s.hub.Publish(ev.FullDocument.Code, Update{Family: ev.FullDocument})
		}
	}
	return cs.Err()
}
