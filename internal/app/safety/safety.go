// internal/app/safety/safety.go

// Package safety records discrete safety events (manual check-ins and
// SOS alerts) in the append-only status log and mirrors the resulting
// status onto the family member list for live consumption.
package safety

import (
	"context"
	"fmt"
	"time"

	"github.com/ehmughn/safelink-web-sub000/internal/app/registry"
	checkinstore "github.com/ehmughn/safelink-web-sub000/internal/app/store/checkins"
	eventstore "github.com/ehmughn/safelink-web-sub000/internal/app/store/statusevents"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/htmlsanitize"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/status"
	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Report carries the optional payload of a check-in or SOS.
type Report struct {
	Location *models.Location
	Message  string
}

// Service is the status propagation service.
type Service struct {
	registry *registry.Service
	events   *eventstore.Store
	checkins *checkinstore.Store
	log      *zap.Logger
}

func New(db *mongo.Database, reg *registry.Service, logger *zap.Logger) *Service {
	return &Service{
		registry: reg,
		events:   eventstore.New(db),
		checkins: checkinstore.New(db),
		log:      logger,
	}
}

// RecordSafeStatus appends a SAFE manual-check-in event and mirrors
// SAFE onto the caller's member entry. Fails with ErrNotInFamily,
// writing no event, when the caller has no family pointer. Returns
// the event id.
func (s *Service) RecordSafeStatus(ctx context.Context, userID string, rep Report) (string, error) {
	code, err := s.registry.CodeFor(ctx, userID)
	if err != nil {
		return "", err
	}

	ev := models.StatusEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		FamilyCode: code,
		Status:     status.Safe,
		Type:       status.TypeManualCheckIn,
		Message:    htmlsanitize.Sanitize(rep.Message),
		Location:   rep.Location,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.events.Append(ctx, ev); err != nil {
		return "", fmt.Errorf("append check-in event: %w", err)
	}

	if err := s.registry.UpdateMemberStatus(ctx, code, userID, status.Safe); err != nil {
		return "", err
	}

	s.log.Info("safe status recorded",
		zap.String("user_id", userID),
		zap.String("code", code),
		zap.String("event_id", ev.ID))
	return ev.ID, nil
}

// SendSOSAlert appends two events, the high-severity alert itself and
// a generic status-stream entry kept for history, then mirrors DANGER
// onto the caller's member entry. Returns the alert id.
func (s *Service) SendSOSAlert(ctx context.Context, userID string, rep Report) (string, error) {
	code, err := s.registry.CodeFor(ctx, userID)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	msg := htmlsanitize.Sanitize(rep.Message)

	alert := models.StatusEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		FamilyCode: code,
		Status:     status.Danger,
		Type:       status.TypeSOSAlert,
		Severity:   status.SeverityCritical,
		Message:    msg,
		Location:   rep.Location,
		Timestamp:  now,
	}
	entry := models.StatusEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		FamilyCode: code,
		Status:     status.Danger,
		Type:       status.TypeSOSStatus,
		Message:    msg,
		Location:   rep.Location,
		Timestamp:  now,
	}

	if err := s.events.Append(ctx, alert); err != nil {
		return "", fmt.Errorf("append sos alert: %w", err)
	}
	if err := s.events.Append(ctx, entry); err != nil {
		return "", fmt.Errorf("append sos status entry: %w", err)
	}

	if err := s.registry.UpdateMemberStatus(ctx, code, userID, status.Danger); err != nil {
		return "", err
	}

	s.log.Warn("sos alert sent",
		zap.String("user_id", userID),
		zap.String("code", code),
		zap.String("alert_id", alert.ID))
	return alert.ID, nil
}

// SendFamilyCheckIn broadcasts a "report your status" request to the
// family. Only the initial broadcast exists today: nothing appends to
// Responses, and silence is handled by the staleness sweep. Returns
// the request id.
func (s *Service) SendFamilyCheckIn(ctx context.Context, code, requesterID, requesterName string) (string, error) {
	if _, err := s.registry.GetFamily(ctx, code); err != nil {
		return "", err
	}

	cr := models.CheckInRequest{
		ID:            uuid.NewString(),
		FamilyCode:    code,
		RequesterID:   requesterID,
		RequesterName: requesterName,
		Timestamp:     time.Now().UTC(),
		Responses:     []models.CheckInResponse{},
	}
	if err := s.checkins.Create(ctx, cr); err != nil {
		return "", fmt.Errorf("create check-in request: %w", err)
	}

	s.log.Info("family check-in requested",
		zap.String("code", code),
		zap.String("requester_id", requesterID),
		zap.String("request_id", cr.ID))
	return cr.ID, nil
}

// EventHistory returns the newest status events for a family.
func (s *Service) EventHistory(ctx context.Context, code string, limit int64) ([]models.StatusEvent, error) {
	return s.events.ListByFamily(ctx, code, limit)
}

// UserEventHistory returns the newest status events one user reported,
// across every family they have belonged to.
func (s *Service) UserEventHistory(ctx context.Context, userID string, limit int64) ([]models.StatusEvent, error) {
	return s.events.ListByUser(ctx, userID, limit)
}
