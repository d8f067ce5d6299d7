// Package service holds the notification business logic: preference
// upserts and the send-and-record path.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AniiitaCode/email-srv/internal/db"
	"github.com/AniiitaCode/email-srv/internal/mailer"
	"github.com/AniiitaCode/email-srv/internal/metrics"
	"github.com/AniiitaCode/email-srv/internal/redis"
)

// ErrPreferenceDisabled is returned when a send is attempted for a user who
// has opted out. No email row is written in that case.
var ErrPreferenceDisabled = errors.New("user does not allow receiving emails")

// PreferenceStore is the persistence contract for preference rows.
type PreferenceStore interface {
	GetPreferenceByUserID(ctx context.Context, userID uuid.UUID) (*db.Preference, error)
	CreatePreference(ctx context.Context, pref *db.Preference) error
	UpdatePreference(ctx context.Context, pref *db.Preference) error
}

// EmailStore is the persistence contract for the append-only send log.
type EmailStore interface {
	CreateEmail(ctx context.Context, email *db.Email) error
}

// Service orchestrates preference lookups and email dispatch.
type Service struct {
	prefs  PreferenceStore
	emails EmailStore
	sender mailer.Sender
	cache  *redis.PreferenceCache // nil if Redis not configured
	logger *zap.Logger
}

// New creates a notification service. cache may be nil.
func New(prefs PreferenceStore, emails EmailStore, sender mailer.Sender, cache *redis.PreferenceCache, logger *zap.Logger) *Service {
	return &Service{
		prefs:  prefs,
		emails: emails,
		sender: sender,
		cache:  cache,
		logger: logger,
	}
}

// UpsertPreference creates the preference row for a user, or overwrites the
// contact address and enabled flag if one already exists. Updates refresh
// updated_on; creation sets created_on == updated_on.
func (s *Service) UpsertPreference(ctx context.Context, userID uuid.UUID, contactEmail string, enabled bool) (*db.Preference, error) {
	pref, err := s.prefs.GetPreferenceByUserID(ctx, userID)
	if err != nil && !errors.Is(err, db.ErrPreferenceNotFound) {
		return nil, err
	}

	if pref != nil {
		pref.ContactEmail = contactEmail
		pref.Enabled = enabled
		pref.UpdatedOn = time.Now().UTC()

		if err := s.prefs.UpdatePreference(ctx, pref); err != nil {
			return nil, err
		}
		s.invalidateCache(ctx, userID)
		metrics.RecordPreferenceUpsert("updated")
		return pref, nil
	}

	now := time.Now().UTC()
	pref = &db.Preference{
		ID:           uuid.New(),
		UserID:       userID,
		Enabled:      enabled,
		ContactEmail: contactEmail,
		CreatedOn:    now,
		UpdatedOn:    now,
	}

	if err := s.prefs.CreatePreference(ctx, pref); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, userID)
	metrics.RecordPreferenceUpsert("created")
	return pref, nil
}

// GetPreferenceByUserID looks up the preference row for a user. A miss is a
// hard error here: db.ErrPreferenceNotFound.
func (s *Service) GetPreferenceByUserID(ctx context.Context, userID uuid.UUID) (*db.Preference, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn("preference cache read failed, falling back to database",
				zap.Error(err),
				zap.String("user_id", userID.String()),
			)
		} else if cached != nil {
			return cached, nil
		}
	}

	pref, err := s.prefs.GetPreferenceByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, pref); err != nil {
			s.logger.Warn("preference cache write failed",
				zap.Error(err),
				zap.String("user_id", userID.String()),
			)
		}
	}

	return pref, nil
}

// SendEmail attempts one delivery to the user's contact address and appends
// the outcome to the send log. A missing preference propagates as
// db.ErrPreferenceNotFound and a disabled one as ErrPreferenceDisabled; in
// both cases nothing is written. A transport failure is not an error: it is
// absorbed into a FAILED status on the returned record.
func (s *Service) SendEmail(ctx context.Context, userID uuid.UUID, subject, body string) (*db.Email, error) {
	pref, err := s.GetPreferenceByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !pref.Enabled {
		return nil, ErrPreferenceDisabled
	}

	email := &db.Email{
		ID:        uuid.New(),
		UserID:    userID,
		Subject:   subject,
		Body:      body,
		CreatedOn: time.Now().UTC(),
	}

	if sendErr := s.sender.Send(ctx, pref.ContactEmail, subject, body); sendErr != nil {
		s.logger.Warn("email delivery failed",
			zap.Error(sendErr),
			zap.String("user_id", userID.String()),
		)
		email.Status = db.StatusFailed
	} else {
		email.Status = db.StatusSucceeded
	}

	if err := s.emails.CreateEmail(ctx, email); err != nil {
		return nil, err
	}

	metrics.RecordEmailSent(email.Status)
	return email, nil
}

// ChangePreference flips the enabled flag for an existing preference.
// Unlike UpsertPreference it does not touch updated_on; that asymmetry is
// part of the observed contract.
func (s *Service) ChangePreference(ctx context.Context, userID uuid.UUID, enabled bool) (*db.Preference, error) {
	pref, err := s.GetPreferenceByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pref.Enabled = enabled

	if err := s.prefs.UpdatePreference(ctx, pref); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, userID)
	return pref, nil
}

func (s *Service) invalidateCache(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("preference cache invalidation failed",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
	}
}
