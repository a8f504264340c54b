package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ehmughn/safelink-web-sub000/internal/app/system/status"
	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateFamily inserts a family with the given code and members. Each
// member gets status SAFE and a join time of now unless the caller
// already filled those in. The first member becomes the founding admin.
func (f *Fixtures) CreateFamily(ctx context.Context, code string, members ...models.Member) models.Family {
	f.t.Helper()

	now := time.Now().UTC()
	fam := models.Family{
		Code:      code,
		CreatedAt: now,
		Members:   make(map[string]models.Member, len(members)),
	}
	for i, m := range members {
		if m.Status == "" {
			m.Status = status.Safe
		}
		if m.JoinedAt.IsZero() {
			m.JoinedAt = now.Add(time.Duration(i) * time.Millisecond)
		}
		if m.LastUpdate.IsZero() {
			m.LastUpdate = m.JoinedAt
		}
		if fam.CreatedBy == "" {
			fam.CreatedBy = m.UserID
			m.IsAdmin = true
		}
		fam.Members[m.UserID] = m
	}

	if _, err := f.db.Collection("families").InsertOne(ctx, fam); err != nil {
		f.t.Fatalf("failed to create test family: %v", err)
	}
	return fam
}

// Member builds a member record for CreateFamily.
func (f *Fixtures) Member(userID, name string) models.Member {
	f.t.Helper()
	return models.Member{
		UserID: userID,
		Name:   name,
		Email:  name + "@test.com",
	}
}

// CreateProfile inserts a profile pointing at the given family code.
// Pass an empty code for a user who is not in a family.
func (f *Fixtures) CreateProfile(ctx context.Context, userID, name, code string) models.Profile {
	f.t.Helper()

	p := models.Profile{
		UserID:     userID,
		Name:       name,
		Email:      name + "@test.com",
		FamilyCode: code,
		UpdatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

// CreateStatusEvent inserts a status event for the given user and family.
func (f *Fixtures) CreateStatusEvent(ctx context.Context, userID, code, st, evType string, at time.Time) models.StatusEvent {
	f.t.Helper()

	ev := models.StatusEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		FamilyCode: code,
		Status:     st,
		Type:       evType,
		Timestamp:  at,
	}
	if _, err := f.db.Collection("status_events").InsertOne(ctx, ev); err != nil {
		f.t.Fatalf("failed to create test status event: %v", err)
	}
	return ev
}

// CreateCheckInRequest inserts an unanswered check-in request.
func (f *Fixtures) CreateCheckInRequest(ctx context.Context, code, requesterID string, at time.Time) models.CheckInRequest {
	f.t.Helper()

	req := models.CheckInRequest{
		ID:          uuid.NewString(),
		FamilyCode:  code,
		RequesterID: requesterID,
		Timestamp:   at,
		Responses:   []models.CheckInResponse{},
	}
	if _, err := f.db.Collection("checkin_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test check-in request: %v", err)
	}
	return req
}
