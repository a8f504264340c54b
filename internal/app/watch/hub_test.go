package watch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	familystore "github.com/ehmughn/safelink-web-sub000/internal/app/store/families"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/status"
	"github.com/ehmughn/safelink-web-sub000/internal/app/watch"
	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
	"go.uber.org/zap"
)

// fakeLoader serves snapshots from a map, standing in for the families
// store.
type fakeLoader struct {
	families map[string]*models.Family
}

func (l *fakeLoader) GetByCode(ctx context.Context, code string) (*models.Family, error) {
	f, ok := l.families[code]
	if !ok {
		return nil, familystore.ErrNotFound
	}
	return f, nil
}

func family(code string, memberStatuses map[string]string) *models.Family {
	f := &models.Family{
		Code:    code,
		Members: make(map[string]models.Member, len(memberStatuses)),
	}
	for uid, st := range memberStatuses {
		f.Members[uid] = models.Member{UserID: uid, Status: st}
	}
	return f
}

func recv(t *testing.T, sub *watch.Subscription) watch.Update {
	t.Helper()
	select {
	case u, ok := <-sub.Updates():
		if !ok {
			t.Fatal("updates channel closed unexpectedly")
		}
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
	}
	return watch.Update{}
}

func TestWatch_InitialSnapshot(t *testing.T) {
	loader := &fakeLoader{families: map[string]*models.Family{
		"123456": family("123456", map[string]string{"u1": status.Safe}),
	}}
	hub := watch.NewHub(loader, zap.NewNop())
	defer hub.Close()

	sub, err := hub.Watch(context.Background(), "123456")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer sub.Close()

	u := recv(t, sub)
	if u.Err != nil {
		t.Fatalf("unexpected error update: %v", u.Err)
	}
	if u.Family.Code != "123456" {
		t.Errorf("code: got %q", u.Family.Code)
	}
}

func TestWatch_UnknownFamilyDeliversError(t *testing.T) {
	hub := watch.NewHub(&fakeLoader{families: map[string]*models.Family{}}, zap.NewNop())
	defer hub.Close()

	sub, err := hub.Watch(context.Background(), "999999")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer sub.Close()

	u := recv(t, sub)
	if !errors.Is(u.Err, familystore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", u.Err)
	}
}

// gatedLoader blocks GetByCode until released, reporting when a read
// has started. Lets a test publish a change in the window between
// subscriber registration and the snapshot read finishing.
type gatedLoader struct {
	families map[string]*models.Family
	entered  chan struct{}
	release  chan struct{}
}

func (l *gatedLoader) GetByCode(ctx context.Context, code string) (*models.Family, error) {
	close(l.entered)
	<-l.release
	f, ok := l.families[code]
	if !ok {
		return nil, familystore.ErrNotFound
	}
	return f, nil
}

func TestWatch_SnapshotDoesNotOverwriteNewerUpdate(t *testing.T) {
	loader := &gatedLoader{
		families: map[string]*models.Family{
			"123456": family("123456", map[string]string{"u1": status.Safe}),
		},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	hub := watch.NewHub(loader, zap.NewNop())
	defer hub.Close()

	type result struct {
		sub *watch.Subscription
		err error
	}
	watched := make(chan result, 1)
	go func() {
		sub, err := hub.Watch(context.Background(), "123456")
		watched <- result{sub, err}
	}()

	// Wait until the subscriber is registered and stuck in the
	// snapshot read, then publish a newer state.
	select {
	case <-loader.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot read to start")
	}
	hub.Publish("123456", watch.Update{Family: family("123456", map[string]string{"u1": status.Danger})})
	close(loader.release)

	res := <-watched
	if res.err != nil {
		t.Fatalf("Watch failed: %v", res.err)
	}
	defer res.sub.Close()

	u := recv(t, res.sub)
	if u.Err != nil {
		t.Fatalf("unexpected error update: %v", u.Err)
	}
	if got := u.Family.Members["u1"].Status; got != status.Danger {
		t.Errorf("first delivery: got %q, want %q", got, status.Danger)
	}

	// The stale snapshot must not trail in afterwards.
	select {
	case u := <-res.sub.Updates():
		t.Fatalf("unexpected second delivery: %+v", u)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublish_FansOutToAllSubscribers(t *testing.T) {
	loader := &fakeLoader{families: map[string]*models.Family{
		"123456": family("123456", map[string]string{"u1": status.Safe}),
	}}
	hub := watch.NewHub(loader, zap.NewNop())
	defer hub.Close()

	var subs []*watch.Subscription
	for i := 0; i < 3; i++ {
		sub, err := hub.Watch(context.Background(), "123456")
		if err != nil {
			t.Fatalf("Watch %d failed: %v", i, err)
		}
		defer sub.Close()
		subs = append(subs, sub)
		recv(t, sub) // drain initial snapshot
	}

	hub.Publish("123456", watch.Update{Family: family("123456", map[string]string{"u1": status.Danger})})

	for i, sub := range subs {
		u := recv(t, sub)
		if u.Err != nil {
			t.Fatalf("subscriber %d: unexpected error: %v", i, u.Err)
		}
		if got := u.Family.Members["u1"].Status; got != status.Danger {
			t.Errorf("subscriber %d: got %q, want %q", i, got, status.Danger)
		}
	}
}

func TestPublish_OtherCodeNotDelivered(t *testing.T) {
	loader := &fakeLoader{families: map[string]*models.Family{
		"123456": family("123456", map[string]string{"u1": status.Safe}),
	}}
	hub := watch.NewHub(loader, zap.NewNop())
	defer hub.Close()

	sub, err := hub.Watch(context.Background(), "123456")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer sub.Close()
	recv(t, sub)

	hub.Publish("654321", watch.Update{Family: family("654321", nil)})

	select {
	case u := <-sub.Updates():
		t.Fatalf("unexpected delivery: %+v", u)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSlowSubscriberCoalescesToLatest(t *testing.T) {
	loader := &fakeLoader{families: map[string]*models.Family{
		"123456": family("123456", map[string]string{"u1": status.Safe}),
	}}
	hub := watch.NewHub(loader, zap.NewNop())
	defer hub.Close()

	sub, err := hub.Watch(context.Background(), "123456")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer sub.Close()

	// Publish a burst without consuming anything. The initial snapshot
	// may or may not have been picked up by the run loop already, so the
	// guarantee under test is only that the LAST published state is the
	// last thing delivered.
	for _, st := range []string{status.Danger, status.Safe, status.Danger, status.NoResponse} {
		hub.Publish("123456", watch.Update{Family: family("123456", map[string]string{"u1": st})})
	}

	deadline := time.After(2 * time.Second)
	var last watch.Update
	for {
		select {
		case u := <-sub.Updates():
			last = u
			if u.Family != nil && u.Family.Members["u1"].Status == status.NoResponse {
				return
			}
		case <-deadline:
			t.Fatalf("never saw final state; last delivery: %+v", last)
		}
	}
}

func TestClose_EndsSubscriptions(t *testing.T) {
	loader := &fakeLoader{families: map[string]*models.Family{
		"123456": family("123456", map[string]string{"u1": status.Safe}),
	}}
	hub := watch.NewHub(loader, zap.NewNop())

	sub, err := hub.Watch(context.Background(), "123456")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	recv(t, sub)

	hub.Close()

	select {
	case _, ok := <-sub.Updates():
		if ok {
			// One in-flight update may still drain; the channel must
			// close right after.
			if _, ok := <-sub.Updates(); ok {
				t.Error("expected channel to close after hub shutdown")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	// Watching a closed hub fails.
	if _, err := hub.Watch(context.Background(), "123456"); err == nil {
		t.Error("expected Watch on closed hub to fail")
	}
}

func TestContextCancelDetaches(t *testing.T) {
	loader := &fakeLoader{families: map[string]*models.Family{
		"123456": family("123456", map[string]string{"u1": status.Safe}),
	}}
	hub := watch.NewHub(loader, zap.NewNop())
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := hub.Watch(ctx, "123456")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	recv(t, sub)

	cancel()

	select {
	case _, ok := <-sub.Updates():
		if ok {
			if _, ok := <-sub.Updates(); ok {
				t.Error("expected channel to close after context cancel")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
