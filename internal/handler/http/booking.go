package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/30-dung/salon-web/internal/service"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
	"github.com/30-dung/salon-web/pkg/httputil"
	"github.com/30-dung/salon-web/pkg/validator"
)

// BookingHandler drives the booking wizard.
type BookingHandler struct {
	errorWriter
	booking *service.BookingService
}

// NewBookingHandler creates a new booking HTTP handler.
func NewBookingHandler(booking *service.BookingService, sessions *service.SessionService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		errorWriter: errorWriter{sessions: sessions, logger: logger},
		booking:     booking,
	}
}

// Resume handles GET /api/v1/booking?step=&salonId=&phone=
func (h *BookingHandler) Resume(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := h.booking.Resume(r.Context(), sess, r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, view)
}

// Apply handles POST /api/v1/booking/events
func (h *BookingHandler) Apply(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req service.BookingEventInput
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.booking.Apply(r.Context(), sess, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, view)
}

// Slots handles GET /api/v1/booking/slots?stylistId=&date=
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var stylistID int64
	if raw := q.Get("stylistId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, r, apperrors.InvalidField("stylistId", "invalid stylist id: "+raw))
			return
		}
		stylistID = id
	}

	slots, err := h.booking.Slots(r.Context(), sess, stylistID, q.Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, slots)
}

// Submit handles POST /api/v1/booking/submit
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	result, err := h.booking.Submit(r.Context(), sess)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}

// Confirmation handles GET /api/v1/appointments/{id}
func (h *BookingHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "appointment id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	appt, err := h.booking.Confirmation(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, appt)
}
