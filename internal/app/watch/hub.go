// internal/app/watch/hub.go
package watch

import (
	"context"
	"sync"

	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
	"go.uber.org/zap"
)

// Loader fetches the current family snapshot, used for the initial
// delivery when a subscription attaches. The families store satisfies
// this.
type Loader interface {
	GetByCode(ctx context.Context, code string) (*models.Family, error)
}

// Hub fans updates for a join code out to every subscription attached
// to that code. Subscribers are independent: each gets its own
// delivery goroutine, and a slow consumer only coalesces its own
// stream (latest snapshot wins) without holding anyone else up.
type Hub struct {
	loader Loader
	log    *zap.Logger

	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
}

func NewHub(loader Loader, logger *zap.Logger) *Hub {
	return &Hub{
		loader: loader,
		log:    logger,
		subs:   make(map[string]map[*subscriber]struct{}),
	}
}

// Watch attaches a subscription to a join code. The current snapshot
// (or the not-found error, when the family does not exist) is
// delivered first; afterwards every published change arrives until the
// subscription is closed or ctx is canceled.
func (h *Hub) Watch(ctx context.Context, code string) (*Subscription, error) {
	sub := newSubscriber()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.stop()
		return nil, context.Canceled
	}
	set, ok := h.subs[code]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[code] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	s := &Subscription{
		updates: sub.out,
		cancel: func() {
			h.detach(code, sub)
			sub.stop()
		},
	}

	// Detach automatically when the caller's context ends.
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-sub.done:
		}
	}()

	// Initial snapshot so a new viewer does not wait for the next change.
	// The subscriber is already registered, so a change committed while
	// the snapshot is being read may land first; seed discards the
	// snapshot in that case rather than letting the older read win.
	// Delivery starts only after the seed attempt.
	f, err := h.loader.GetByCode(ctx, code)
	if err != nil {
		sub.seed(Update{Err: err})
	} else {
		sub.seed(Update{Family: f})
	}
	go sub.run()

	return s, nil
}

// Publish delivers an update to every subscription attached to code.
func (h *Hub) Publish(code string, u Update) {
	h.mu.Lock()
	targets := make([]*subscriber, 0, len(h.subs[code]))
	for sub := range h.subs[code] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		sub.publish(u)
	}
}

// Close detaches every subscription. Used at shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var all []*subscriber
	for _, set := range h.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	h.subs = make(map[string]map[*subscriber]struct{})
	h.mu.Unlock()

	for _, sub := range all {
		sub.stop()
	}
}

func (h *Hub) detach(code string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[code]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, code)
		}
	}
}

// subscriber is the delivery side of one subscription. publish stores
// the latest update and pokes the run loop; if the consumer is slower
// than the publisher, intermediate snapshots are dropped and only the
// newest is delivered (the store already guarantees each delivered
// value is a prefix-consistent snapshot).
type subscriber struct {
	mu      sync.Mutex
	latest  *Update
	stopped bool

	wake chan struct{}
	out  chan Update
	done chan struct{}
}

func newSubscriber() *subscriber {
	return &subscriber{
		wake: make(chan struct{}, 1),
		out:  make(chan Update),
		done: make(chan struct{}),
	}
}

func (b *subscriber) publish(u Update) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.latest = &u
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// seed sets the initial snapshot, yielding to any update that was
// published while the snapshot was being loaded. A published update is
// always at least as fresh as the read it raced with.
func (b *subscriber) seed(u Update) {
	b.mu.Lock()
	if b.stopped || b.latest != nil {
		b.mu.Unlock()
		return
	}
	b.latest = &u
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *subscriber) stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	b.mu.Unlock()
	close(b.done)
}

func (b *subscriber) run() {
	defer close(b.out)
	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
			b.mu.Lock()
			u := b.latest
			b.latest = nil
			b.mu.Unlock()
			if u == nil {
				continue
			}
			select {
			case b.out <- *u:
			case <-b.done:
				return
			}
		}
	}
}
