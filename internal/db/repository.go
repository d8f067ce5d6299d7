package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrPreferenceNotFound is returned when no preference row exists for a user.
var ErrPreferenceNotFound = errors.New("email preference not found")

// Repository handles database operations for preferences and the email log
type Repository struct {
	db     *DB
	logger *zap.Logger
}

// NewRepository creates a new repository
func NewRepository(db *DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetPreferenceByUserID retrieves the preference row for a user.
// A miss is reported as ErrPreferenceNotFound, not as a query failure.
func (r *Repository) GetPreferenceByUserID(ctx context.Context, userID uuid.UUID) (*Preference, error) {
	query := `
		SELECT id, user_id, is_enabled, contact_email, created_on, updated_on
		FROM email_preferences
		WHERE user_id = $1
	`

	var pref Preference
	err := r.db.Pool().QueryRow(ctx, query, userID).Scan(
		&pref.ID,
		&pref.UserID,
		&pref.Enabled,
		&pref.ContactEmail,
		&pref.CreatedOn,
		&pref.UpdatedOn,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPreferenceNotFound
	}

	if err != nil {
		r.logger.Error("failed to get preference",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("query preference: %w", err)
	}

	return &pref, nil
}

// CreatePreference inserts a new preference row
func (r *Repository) CreatePreference(ctx context.Context, pref *Preference) error {
	query := `
		INSERT INTO email_preferences (
			id, user_id, is_enabled, contact_email, created_on, updated_on
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool().Exec(
		ctx,
		query,
		pref.ID,
		pref.UserID,
		pref.Enabled,
		pref.ContactEmail,
		pref.CreatedOn,
		pref.UpdatedOn,
	)

	if err != nil {
		r.logger.Error("failed to create preference",
			zap.Error(err),
			zap.String("user_id", pref.UserID.String()),
		)
		return fmt.Errorf("insert preference: %w", err)
	}

	r.logger.Info("preference created",
		zap.String("preference_id", pref.ID.String()),
		zap.String("user_id", pref.UserID.String()),
		zap.Bool("enabled", pref.Enabled),
	)

	return nil
}

// UpdatePreference overwrites contact_email, is_enabled and updated_on for an
// existing row. updated_on is written from the struct as-is; whether it moves
// is the caller's decision.
func (r *Repository) UpdatePreference(ctx context.Context, pref *Preference) error {
	query := `
		UPDATE email_preferences
		SET is_enabled = $1, contact_email = $2, updated_on = $3
		WHERE id = $4
	`

	result, err := r.db.Pool().Exec(ctx, query, pref.Enabled, pref.ContactEmail, pref.UpdatedOn, pref.ID)
	if err != nil {
		r.logger.Error("failed to update preference",
			zap.Error(err),
			zap.String("preference_id", pref.ID.String()),
		)
		return fmt.Errorf("update preference: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPreferenceNotFound
	}

	return nil
}

// CreateEmail appends one row to the send log. There is no update path.
func (r *Repository) CreateEmail(ctx context.Context, email *Email) error {
	query := `
		INSERT INTO emails (
			id, user_id, subject, body, status, created_on
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool().Exec(
		ctx,
		query,
		email.ID,
		email.UserID,
		email.Subject,
		email.Body,
		email.Status,
		email.CreatedOn,
	)

	if err != nil {
		r.logger.Error("failed to record email",
			zap.Error(err),
			zap.String("email_id", email.ID.String()),
			zap.String("user_id", email.UserID.String()),
		)
		return fmt.Errorf("insert email: %w", err)
	}

	r.logger.Info("email recorded",
		zap.String("email_id", email.ID.String()),
		zap.String("user_id", email.UserID.String()),
		zap.String("status", email.Status),
	)

	return nil
}
