// internal/app/watch/watch.go

// Package watch delivers live family updates to subscribers without
// polling. A Hub fans per-code updates out to independent
// subscriptions; the change-stream source feeds the hub from MongoDB.
package watch

import (
	"context"
	"sync"

	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
)

// Update is one delivery to a subscriber: either the full current
// family document, or the error state for a family that was deleted or
// never existed.
type Update struct {
	Family *models.Family
	Err    error
}

// Watcher is the capability consumers use to attach a live view. It is
// an interface so the hub-backed implementation can be swapped for a
// poller or a message-queue consumer in other deployments.
type Watcher interface {
	Watch(ctx context.Context, code string) (*Subscription, error)
}

// Subscription is one attached live view. Updates delivers the stream;
// Close detaches it, after which the channel is closed and no further
// updates arrive. Close is safe to call more than once.
type Subscription struct {
	updates <-chan Update
	cancel  func()
	once    sync.Once
}

// Updates returns the delivery channel. It is closed after Close.
func (s *Subscription) Updates() <-chan Update {
	return s.updates
}

// Close detaches the subscription.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}
