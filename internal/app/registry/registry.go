// internal/app/registry/registry.go

// Package registry owns the family entity: creation with unique code
// allocation, join-by-code, leave, and per-member status updates.
//
// Every operation that touches both the family document and the user's
// family_code pointer runs under txn.Run so a crash between the two
// writes cannot leave them disagreeing (on deployments without
// transactions the writes degrade to sequential).
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	familystore "github.com/ehmughn/safelink-web-sub000/internal/app/store/families"
	profilestore "github.com/ehmughn/safelink-web-sub000/internal/app/store/profiles"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/auth"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/joincode"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/normalize"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/status"
	"github.com/ehmughn/safelink-web-sub000/internal/app/system/txn"
	"github.com/ehmughn/safelink-web-sub000/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxCodeAttempts bounds the collision-retry loop in CreateFamily.
// The code space holds 900,000 values; at any realistic occupancy 32
// uniform draws failing is a sign the space is effectively exhausted,
// not bad luck.
const maxCodeAttempts = 32

var (
	ErrNotFound           = familystore.ErrNotFound
	ErrAlreadyMember      = familystore.ErrAlreadyMember
	ErrMemberNotFound     = familystore.ErrMemberNotFound
	ErrNotInFamily        = errors.New("user does not belong to a family")
	ErrInvalidStatus      = errors.New("invalid member status")
	ErrInvalidCode        = errors.New("malformed join code")
	ErrCodeSpaceExhausted = errors.New("could not allocate an unused join code")
)

// Service is the family registry.
type Service struct {
	db       *mongo.Database
	families *familystore.Store
	profiles *profilestore.Store
	log      *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		families: familystore.New(db),
		profiles: profilestore.New(db),
		log:      logger,
	}
}

// CreateFamily allocates an unused join code and creates the family
// with the caller as its first (admin) member, status SAFE. The family
// insert and the caller's family_code pointer are written in one
// transaction. Returns the new code.
func (s *Service) CreateFamily(ctx context.Context, id auth.Identity) (string, error) {
	now := time.Now().UTC()
	member := newMember(id, now)
	member.IsAdmin = true

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := joincode.New()
		f := models.Family{
			Code:      code,
			CreatedAt: now,
			CreatedBy: id.UserID,
			Members:   map[string]models.Member{id.UserID: member},
		}

		err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
			if err := s.families.Insert(ctx, f); err != nil {
				return err
			}
			return s.profiles.SetFamily(ctx, id.UserID, id.Name, id.Email, code)
		})
		if errors.Is(err, familystore.ErrCodeTaken) {
			s.log.Debug("join code collision, retrying",
				zap.String("code", code),
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create family: %w", err)
		}

		s.log.Info("family created",
			zap.String("code", code),
			zap.String("created_by", id.UserID))
		return code, nil
	}

	return "", ErrCodeSpaceExhausted
}

// JoinFamily adds the caller to the family identified by code. The
// member entry and the family_code pointer are written together.
// Returns ErrNotFound for an unknown code and ErrAlreadyMember when
// the caller already belongs to it.
func (s *Service) JoinFamily(ctx context.Context, code string, id auth.Identity) error {
	code = normalize.Code(code)
	if !joincode.Valid(code) {
		return ErrInvalidCode
	}

	member := newMember(id, time.Now().UTC())

	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if err := s.families.AddMember(ctx, code, member); err != nil {
			return err
		}
		return s.profiles.SetFamily(ctx, id.UserID, id.Name, id.Email, code)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyMember) {
			return err
		}
		return fmt.Errorf("join family %s: %w", code, err)
	}

	s.log.Info("member joined family",
		zap.String("code", code),
		zap.String("user_id", id.UserID))
	return nil
}

// LeaveFamily removes the caller's member entry (by userId key, never
// by value equality) and clears their family_code pointer. Leaving
// twice returns ErrMemberNotFound both times with no side effects.
// The departing admin is not replaced; a family may end up with no
// admin.
func (s *Service) LeaveFamily(ctx context.Context, code, userID string) error {
	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if err := s.families.RemoveMember(ctx, code, userID); err != nil {
			return err
		}
		return s.profiles.ClearFamily(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMemberNotFound) {
			return err
		}
		return fmt.Errorf("leave family %s: %w", code, err)
	}

	s.log.Info("member left family",
		zap.String("code", code),
		zap.String("user_id", userID))
	return nil
}

// UpdateMemberStatus sets one member's status and advances their
// last_update. The status is canonicalized to the uppercase wire form
// before validation. The write touches only that member's keyed entry,
// so concurrent updates for different members never overwrite each
// other.
func (s *Service) UpdateMemberStatus(ctx context.Context, code, userID, st string) error {
	st = normalize.Status(st)
	if !status.Valid(st) {
		return ErrInvalidStatus
	}

	err := s.families.SetMemberStatus(ctx, code, userID, st, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMemberNotFound) {
			return err
		}
		return fmt.Errorf("update status for %s in family %s: %w", userID, code, err)
	}
	return nil
}

// GetFamily loads a family by join code.
func (s *Service) GetFamily(ctx context.Context, code string) (*models.Family, error) {
	return s.families.GetByCode(ctx, code)
}

// FamilyFor resolves the caller's family through their profile
// pointer. Returns ErrNotInFamily when the pointer is absent.
func (s *Service) FamilyFor(ctx context.Context, userID string) (*models.Family, error) {
	code, err := s.CodeFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	f, err := s.families.GetByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		// Pointer refers to a family that no longer exists; surface it
		// as NotFound so the caller can repair by re-joining.
		s.log.Warn("dangling family_code pointer",
			zap.String("user_id", userID),
			zap.String("code", code))
	}
	return f, err
}

// CodeFor returns the caller's family code, or ErrNotInFamily.
func (s *Service) CodeFor(ctx context.Context, userID string) (string, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, profilestore.ErrNotFound) {
		return "", ErrNotInFamily
	}
	if err != nil {
		return "", fmt.Errorf("load profile %s: %w", userID, err)
	}
	if !p.InFamily() {
		return "", ErrNotInFamily
	}
	return p.FamilyCode, nil
}

func newMember(id auth.Identity, now time.Time) models.Member {
	return models.Member{
		UserID:     id.UserID,
		Name:       normalize.Name(id.Name),
		Email:      normalize.Email(id.Email),
		Status:     status.Safe,
		LastUpdate: now,
		JoinedAt:   now,
	}
}
