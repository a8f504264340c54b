package safety_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	safetyfeature "github.com/ehmughn/safelink-web-sub000/internal/app/features/safety"
	"github.com/ehmughn/safelink-web-sub000/internal/app/registry"
	safetysvc "github.com/ehmughn/safelink-web-sub000/internal/app/safety"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/auth"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/status"
	"github.com/ehmughn/safelink-web-sub000/internal/testutil"
	"go.uber.org/zap"
)

type env struct {
	reg     *registry.Service
	handler *safetyfeature.Handler
}

func setup(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	reg := registry.New(db, logger)
	saf := safetysvc.New(db, reg, logger)
	return env{
		reg:     reg,
		handler: safetyfeature.NewHandler(saf, 500, logger),
	}
}

func memberOfFamily(t *testing.T, e env, name string) (auth.Identity, string) {
	t.Helper()
	id := testutil.TestIdentity(name)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	code, err := e.reg.CreateFamily(ctx, id)
	if err != nil {
		t.Fatalf("CreateFamily failed: %v", err)
	}
	return id, code
}

func TestHandleCheckIn(t *testing.T) {
	e := setup(t)
	alice, _ := memberOfFamily(t, e, "alice")

	body := strings.NewReader(`{"message":"all good","location":{"latitude":35.6,"longitude":139.7}}`)
	req := testutil.AuthedRequest("POST", "/api/safety/checkin", body, alice)
	rec := httptest.NewRecorder()
	e.handler.HandleCheckIn(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body)
	}
	var resp struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.EventID == "" {
		t.Error("expected an event id")
	}
}

func TestHandleCheckIn_EmptyBody(t *testing.T) {
	e := setup(t)
	alice, _ := memberOfFamily(t, e, "alice")

	req := testutil.AuthedRequest("POST", "/api/safety/checkin", nil, alice)
	rec := httptest.NewRecorder()
	e.handler.HandleCheckIn(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body)
	}
}

func TestHandleCheckIn_NotInFamily(t *testing.T) {
	e := setup(t)

	req := testutil.AuthedRequest("POST", "/api/safety/checkin", nil, testutil.TestIdentity("stranger"))
	rec := httptest.NewRecorder()
	e.handler.HandleCheckIn(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected %d, got %d: %s", http.StatusConflict, rec.Code, rec.Body)
	}
}

func TestHandleCheckIn_MalformedBody(t *testing.T) {
	e := setup(t)
	alice, _ := memberOfFamily(t, e, "alice")

	req := testutil.AuthedRequest("POST", "/api/safety/checkin", strings.NewReader("{not json"), alice)
	rec := httptest.NewRecorder()
	e.handler.HandleCheckIn(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandleSOS(t *testing.T) {
	e := setup(t)
	alice, code := memberOfFamily(t, e, "alice")

	req := testutil.AuthedRequest("POST", "/api/safety/sos", strings.NewReader(`{"message":"need help"}`), alice)
	rec := httptest.NewRecorder()
	e.handler.HandleSOS(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	f, err := e.reg.GetFamily(ctx, code)
	if err != nil {
		t.Fatalf("GetFamily failed: %v", err)
	}
	if got := f.Members[alice.UserID].Status; got != status.Danger {
		t.Errorf("status after SOS: got %q, want %q", got, status.Danger)
	}
}

func TestServeEvents(t *testing.T) {
	e := setup(t)
	alice, code := memberOfFamily(t, e, "alice")

	sos := testutil.AuthedRequest("POST", "/api/safety/sos", nil, alice)
	e.handler.HandleSOS(httptest.NewRecorder(), sos)

	req := testutil.AuthedRequest("GET", "/api/safety/events?code="+code, nil, alice)
	rec := httptest.NewRecorder()
	e.handler.ServeEvents(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, rec.Code, rec.Body)
	}
	var resp struct {
		Events []struct {
			Type   string `json:"type"`
			Status string `json:"status"`
		} `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Events) != 2 {
		t.Errorf("expected 2 events, got %d", len(resp.Events))
	}
}

func TestServeEvents_OwnHistoryWithoutCode(t *testing.T) {
	e := setup(t)
	alice, _ := memberOfFamily(t, e, "alice")
	bob, _ := memberOfFamily(t, e, "bob")

	check := testutil.AuthedRequest("POST", "/api/safety/checkin", nil, alice)
	e.handler.HandleCheckIn(httptest.NewRecorder(), check)
	sos := testutil.AuthedRequest("POST", "/api/safety/sos", nil, bob)
	e.handler.HandleSOS(httptest.NewRecorder(), sos)

	req := testutil.AuthedRequest("GET", "/api/safety/events", nil, alice)
	rec := httptest.NewRecorder()
	e.handler.ServeEvents(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, rec.Code, rec.Body)
	}
	var resp struct {
		Events []struct {
			UserID string `json:"user_id"`
			Type   string `json:"type"`
		} `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(resp.Events))
	}
	if resp.Events[0].UserID != alice.UserID {
		t.Errorf("event user: got %q, want %q", resp.Events[0].UserID, alice.UserID)
	}
}

func TestServeEvents_Validation(t *testing.T) {
	e := setup(t)
	alice := testutil.TestIdentity("alice")

	for _, target := range []string{
		"/api/safety/events?code=123456&limit=0",
		"/api/safety/events?code=123456&limit=abc",
	} {
		req := testutil.AuthedRequest("GET", target, nil, alice)
		rec := httptest.NewRecorder()
		e.handler.ServeEvents(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected %d, got %d", target, http.StatusBadRequest, rec.Code)
		}
	}
}
