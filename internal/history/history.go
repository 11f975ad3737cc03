// Package history builds the signed-in user's appointment list with the
// actions each row allows.
package history

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/30-dung/salon-web/internal/domain"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
)

// Action is something the user can do with a history row.
type Action string

const (
	ActionCancel      Action = "cancel"
	ActionReview      Action = "review"
	ActionViewReviews Action = "view_reviews"
)

// Row is one appointment in the history list.
type Row struct {
	Appointment domain.Appointment `json:"appointment"`
	Reviewed    bool               `json:"reviewed"`
	Actions     []Action           `json:"actions"`
}

// ActionsFor lists the actions for an appointment in the given state.
func ActionsFor(status domain.AppointmentStatus, reviewed bool) []Action {
	actions := []Action{}
	if status.CanCancel() {
		actions = append(actions, ActionCancel)
	}
	if status == domain.AppointmentCompleted {
		if reviewed {
			actions = append(actions, ActionViewReviews)
		} else {
			actions = append(actions, ActionReview)
		}
	}
	return actions
}

// BuildRows keeps the upstream order of the appointments.
func BuildRows(appts []domain.Appointment, reviewed map[int64]bool) []Row {
	rows := make([]Row, 0, len(appts))
	for _, a := range appts {
		r := reviewed[a.ID]
		rows = append(rows, Row{Appointment: a, Reviewed: r, Actions: ActionsFor(a.Status, r)})
	}
	return rows
}

// ExistsFunc reports whether an appointment already has a review.
type ExistsFunc func(ctx context.Context, appointmentID int64) (bool, error)

// LookupReviewed checks completed appointments concurrently. A failed check
// counts as not reviewed.
func LookupReviewed(ctx context.Context, appts []domain.Appointment, exists ExistsFunc, limit int, logger *slog.Logger) map[int64]bool {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = 4
	}

	results := make([]bool, len(appts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, a := range appts {
		if a.Status != domain.AppointmentCompleted {
			continue
		}
		g.Go(func() error {
			ok, err := exists(gctx, a.ID)
			if err != nil {
				logger.WarnContext(ctx, "review lookup failed",
					slog.Int64("appointment_id", a.ID),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	reviewed := make(map[int64]bool, len(appts))
	for i, a := range appts {
		if results[i] {
			reviewed[a.ID] = true
		}
	}
	return reviewed
}

// CheckCancel validates a cancellation before it is sent upstream.
func CheckCancel(appt domain.Appointment, confirmed bool) error {
	if !appt.Status.CanCancel() {
		return apperrors.Conflict("only pending or confirmed appointments can be canceled")
	}
	if !confirmed {
		return apperrors.InvalidField("confirm", "please confirm the cancellation")
	}
	return nil
}

// MarkCanceled returns a copy of rows with the given appointment canceled.
// Other rows are untouched.
func MarkCanceled(rows []Row, appointmentID int64) []Row {
	out := slices.Clone(rows)
	for i := range out {
		if out[i].Appointment.ID == appointmentID {
			out[i].Appointment.Status = domain.AppointmentCanceled
			out[i].Actions = ActionsFor(domain.AppointmentCanceled, out[i].Reviewed)
		}
	}
	return out
}

// Find returns the row for an appointment.
func Find(rows []Row, appointmentID int64) (Row, bool) {
	for _, r := range rows {
		if r.Appointment.ID == appointmentID {
			return r, true
		}
	}
	return Row{}, false
}
