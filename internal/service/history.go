package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/30-dung/salon-web/internal/domain"
	"github.com/30-dung/salon-web/internal/event"
	"github.com/30-dung/salon-web/internal/history"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
)

// reviewLookupConcurrency bounds the review existence checks per history load.
const reviewLookupConcurrency = 4

// CancelInput confirms a cancellation.
type CancelInput struct {
	Confirm bool `json:"confirm"`
}

// HistoryService lists and cancels the signed-in user's appointments.
type HistoryService struct {
	auth      AuthAPI
	appts     AppointmentAPI
	reviews   ReviewAPI
	publisher event.Publisher
	logger    *slog.Logger
}

// NewHistoryService creates a history service.
func NewHistoryService(auth AuthAPI, appts AppointmentAPI, reviews ReviewAPI, publisher event.Publisher, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		auth:      auth,
		appts:     appts,
		reviews:   reviews,
		publisher: publisher,
		logger:    logger,
	}
}

// List loads the user's appointments with the actions each one allows.
func (s *HistoryService) List(ctx context.Context) ([]history.Row, error) {
	user, err := s.auth.Profile(ctx)
	if err != nil {
		return nil, err
	}
	appts, err := s.appts.UserAppointments(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	reviewed := history.LookupReviewed(ctx, appts, s.reviews.ReviewExists, reviewLookupConcurrency, s.logger)
	return history.BuildRows(appts, reviewed), nil
}

// Cancel cancels one of the user's appointments and returns the updated
// list. Only that row changes.
func (s *HistoryService) Cancel(ctx context.Context, sess *domain.Session, appointmentID int64, in CancelInput) ([]history.Row, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	row, ok := history.Find(rows, appointmentID)
	if !ok {
		return nil, apperrors.NotFound("appointment", strconv.FormatInt(appointmentID, 10))
	}
	if err := history.CheckCancel(row.Appointment, in.Confirm); err != nil {
		return nil, err
	}

	if err := s.appts.CancelAppointment(ctx, appointmentID); err != nil {
		return nil, err
	}
	AppointmentCancellations.Inc()

	if err := s.publisher.PublishAppointmentCanceled(ctx, sess.ID, appointmentID, sess.UserID()); err != nil {
		s.logger.WarnContext(ctx, "failed to publish appointment.canceled event",
			slog.Int64("appointment_id", appointmentID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "appointment canceled",
		slog.Int64("appointment_id", appointmentID),
		slog.Int64("user_id", sess.UserID()),
	)
	return history.MarkCanceled(rows, appointmentID), nil
}
