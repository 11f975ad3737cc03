package salonapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/30-dung/salon-web/internal/domain"
)

// CreateAppointment books an appointment.
func (c *Client) CreateAppointment(ctx context.Context, req domain.AppointmentRequest) (*domain.Appointment, error) {
	var appt domain.Appointment
	if err := c.call(ctx, "CreateAppointment", http.MethodPost, "appointments", nil, req, &appt); err != nil {
		return nil, err
	}
	return decodeOne("CreateAppointment", &appt)
}

// Appointment fetches one appointment.
func (c *Client) Appointment(ctx context.Context, id int64) (*domain.Appointment, error) {
	var appt domain.Appointment
	if err := c.get(ctx, "Appointment", idPath("appointments/%d", id), nil, &appt); err != nil {
		return nil, err
	}
	return decodeOne("Appointment", &appt)
}

// UserAppointments lists the appointments booked under an email address.
func (c *Client) UserAppointments(ctx context.Context, email string) ([]domain.Appointment, error) {
	var appts []domain.Appointment
	if err := c.get(ctx, "UserAppointments", "appointments/user/"+url.PathEscape(email), nil, &appts); err != nil {
		return nil, err
	}
	return decodeList(ctx, c.logger, "UserAppointments", appts), nil
}

// CancelAppointment cancels an appointment.
func (c *Client) CancelAppointment(ctx context.Context, id int64) error {
	return c.call(ctx, "CancelAppointment", http.MethodPatch, idPath("appointments/%d/cancel", id), nil, nil, nil)
}
