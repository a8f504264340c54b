package eventstore_test

import (
	"testing"
	"time"

	eventstore "github.com/ehmughn/safelink-web-sub000/internal/app/store/statusevents"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/status"
	"github.com/ehmughn/safelink-web-sub000/internal/testutil"
)

func TestListByFamily_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fix := testutil.NewFixtures(t, db)

	base := time.Now().UTC().Truncate(time.Millisecond)
	fix.CreateStatusEvent(ctx, "u1", "123456", status.Safe, status.TypeManualCheckIn, base.Add(-2*time.Hour))
	fix.CreateStatusEvent(ctx, "u2", "123456", status.Danger, status.TypeSOSStatus, base.Add(-time.Hour))
	fix.CreateStatusEvent(ctx, "u1", "123456", status.Safe, status.TypeManualCheckIn, base)
	fix.CreateStatusEvent(ctx, "u9", "999999", status.Safe, status.TypeManualCheckIn, base)

	store := eventstore.New(db)
	events, err := store.ListByFamily(ctx, "123456", 0)
	if err != nil {
		t.Fatalf("ListByFamily failed: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.After(events[i-1].Timestamp) {
			t.Errorf("events out of order at %d: %v after %v", i, events[i].Timestamp, events[i-1].Timestamp)
		}
	}
	if events[0].UserID != "u1" || !events[0].Timestamp.Equal(base) {
		t.Errorf("newest event wrong: %+v", events[0])
	}
}

func TestListByFamily_Limit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fix := testutil.NewFixtures(t, db)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		fix.CreateStatusEvent(ctx, "u1", "123456", status.Safe, status.TypeManualCheckIn, base.Add(time.Duration(i)*time.Minute))
	}

	store := eventstore.New(db)
	events, err := store.ListByFamily(ctx, "123456", 2)
	if err != nil {
		t.Fatalf("ListByFamily failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events, got %d", len(events))
	}
}

func TestListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fix := testutil.NewFixtures(t, db)

	base := time.Now().UTC()
	fix.CreateStatusEvent(ctx, "u1", "123456", status.Safe, status.TypeManualCheckIn, base)
	fix.CreateStatusEvent(ctx, "u2", "123456", status.Danger, status.TypeSOSStatus, base)

	store := eventstore.New(db)
	events, err := store.ListByUser(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].UserID != "u1" {
		t.Errorf("user_id: got %q, want %q", events[0].UserID, "u1")
	}
}
