package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AniiitaCode/email-srv/internal/db"
	"github.com/AniiitaCode/email-srv/internal/service"
)

// EmailService defines the notification operations the API exposes
type EmailService interface {
	UpsertPreference(ctx context.Context, userID uuid.UUID, contactEmail string, enabled bool) (*db.Preference, error)
	GetPreferenceByUserID(ctx context.Context, userID uuid.UUID) (*db.Preference, error)
	SendEmail(ctx context.Context, userID uuid.UUID, subject, body string) (*db.Email, error)
	ChangePreference(ctx context.Context, userID uuid.UUID, enabled bool) (*db.Preference, error)
}

// UpsertPreferenceRequest is the body of POST /api/v1/emails/preferences
type UpsertPreferenceRequest struct {
	UserID       string `json:"userId"`
	Enabled      bool   `json:"enabled"`
	ContactEmail string `json:"contactEmail"`
}

// SendEmailRequest is the body of POST /api/v1/emails
type SendEmailRequest struct {
	UserID  string `json:"userId"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// PreferenceResponse is returned by the preference endpoints
type PreferenceResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	Enabled      bool      `json:"enabled"`
	ContactEmail string    `json:"contactEmail"`
}

// EmailResponse is returned after a send attempt
type EmailResponse struct {
	Subject   string    `json:"subject"`
	CreatedOn time.Time `json:"createdOn"`
	Status    string    `json:"status"`
}

// ErrorResponse represents an error in problem+json format
type ErrorResponse struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Handler holds dependencies for API handlers
type Handler struct {
	logger *zap.Logger
	svc    EmailService
}

// NewHandler creates a new API handler
func NewHandler(logger *zap.Logger, svc EmailService) *Handler {
	return &Handler{
		logger: logger,
		svc:    svc,
	}
}

// UpsertPreference handles POST /api/v1/emails/preferences
func (h *Handler) UpsertPreference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpsertPreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return
	}

	if req.UserID == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Missing userId", "userId is required")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid userId", "userId must be a valid UUID")
		return
	}

	if strings.TrimSpace(req.ContactEmail) == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Missing contactEmail", "contactEmail must not be blank")
		return
	}

	pref, err := h.svc.UpsertPreference(ctx, userID, req.ContactEmail, req.Enabled)
	if err != nil {
		h.logger.Error("failed to upsert preference",
			zap.Error(err),
			zap.String("user_id", req.UserID),
		)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to save preference", "")
		return
	}

	h.logger.Info("preference upserted",
		zap.String("user_id", req.UserID),
		zap.Bool("enabled", req.Enabled),
	)

	h.writeJSON(w, http.StatusCreated, preferenceResponse(pref))
}

// GetPreference handles GET /api/v1/emails/preferences?userId=
func (h *Handler) GetPreference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	pref, err := h.svc.GetPreferenceByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrPreferenceNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Preference not found", "")
			return
		}
		h.logger.Error("failed to get preference",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get preference", "")
		return
	}

	h.writeJSON(w, http.StatusOK, preferenceResponse(pref))
}

// SendEmail handles POST /api/v1/emails. A delivery failure is not an HTTP
// error: the response is still 201 and the status field carries the outcome.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return
	}

	if req.UserID == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Missing userId", "userId is required")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid userId", "userId must be a valid UUID")
		return
	}

	email, err := h.svc.SendEmail(ctx, userID, req.Subject, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrPreferenceNotFound):
			h.writeError(w, http.StatusNotFound, "not_found", "Preference not found",
				"A preference must be registered before emails can be sent")
		case errors.Is(err, service.ErrPreferenceDisabled):
			h.writeError(w, http.StatusConflict, "preference_disabled", "User has opted out of emails", "")
		default:
			h.logger.Error("failed to send email",
				zap.Error(err),
				zap.String("user_id", req.UserID),
			)
			h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to send email", "")
		}
		return
	}

	h.logger.Info("email attempt recorded",
		zap.String("user_id", req.UserID),
		zap.String("status", email.Status),
	)

	h.writeJSON(w, http.StatusCreated, EmailResponse{
		Subject:   email.Subject,
		CreatedOn: email.CreatedOn,
		Status:    email.Status,
	})
}

// ChangePreference handles PUT /api/v1/emails/preferences?userId=&enabled=
func (h *Handler) ChangePreference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	enabledStr := r.URL.Query().Get("enabled")
	if enabledStr == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Missing enabled", "enabled query parameter is required")
		return
	}

	enabled, err := strconv.ParseBool(enabledStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid enabled", "enabled must be true or false")
		return
	}

	pref, err := h.svc.ChangePreference(ctx, userID, enabled)
	if err != nil {
		if errors.Is(err, db.ErrPreferenceNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Preference not found", "")
			return
		}
		h.logger.Error("failed to change preference",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to change preference", "")
		return
	}

	h.logger.Info("preference changed",
		zap.String("user_id", userID.String()),
		zap.Bool("enabled", enabled),
	)

	h.writeJSON(w, http.StatusOK, preferenceResponse(pref))
}

func (h *Handler) userIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr := r.URL.Query().Get("userId")
	if userIDStr == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Missing userId", "userId query parameter is required")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid userId", "userId must be a valid UUID")
		return uuid.Nil, false
	}

	return userID, true
}

func preferenceResponse(pref *db.Preference) PreferenceResponse {
	return PreferenceResponse{
		ID:           pref.ID,
		UserID:       pref.UserID,
		Enabled:      pref.Enabled,
		ContactEmail: pref.ContactEmail,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, errType, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Type:   errType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
