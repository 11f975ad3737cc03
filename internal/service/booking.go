package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/30-dung/salon-web/internal/booking"
	"github.com/30-dung/salon-web/internal/domain"
	"github.com/30-dung/salon-web/internal/event"
	"github.com/30-dung/salon-web/internal/repository"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
)

// submitGuardTTL is how long an identical booking is refused after a
// submission starts.
const submitGuardTTL = 2 * time.Minute

// BookingEventInput is a wizard action posted by the browser. The slot is
// referenced by id and resolved against the stylist's current slots.
type BookingEventInput struct {
	Type       booking.EventType `json:"type" validate:"required"`
	StoreID    int64             `json:"storeId"`
	ServiceIDs []int64           `json:"serviceIds" validate:"max=20"`
	StylistID  int64             `json:"stylistId"`
	Date       string            `json:"date"`
	SlotID     int64             `json:"slotId"`
}

// BookingView is the wizard state plus the lists its current screen shows.
// Errors holds a message per list that failed to load.
type BookingView struct {
	Wizard     booking.Wizard        `json:"wizard"`
	StepName   string                `json:"stepName"`
	URL        string                `json:"url"`
	Cities     []string              `json:"cities,omitempty"`
	Stores     []domain.Store        `json:"stores,omitempty"`
	Store      *domain.Store         `json:"store,omitempty"`
	Services   []domain.StoreService `json:"services,omitempty"`
	Stylists   []domain.Employee     `json:"stylists,omitempty"`
	Slots      []SlotView            `json:"slots,omitempty"`
	Errors     map[string]string     `json:"errors,omitempty"`
	RedirectTo string                `json:"redirectTo,omitempty"`
}

// SubmitResult is a created appointment and where to send the browser next.
type SubmitResult struct {
	Appointment *domain.Appointment `json:"appointment"`
	RedirectTo  string              `json:"redirectTo"`
}

// BookingService drives the booking wizard for one session at a time.
type BookingService struct {
	catalog   *CatalogService
	api       AppointmentAPI
	sessions  *SessionService
	guard     repository.SubmitGuard
	publisher event.Publisher
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewBookingService creates a booking service. loc is the salon's time zone,
// used to decide which slots are still in the future.
func NewBookingService(
	catalog *CatalogService,
	api AppointmentAPI,
	sessions *SessionService,
	guard repository.SubmitGuard,
	publisher event.Publisher,
	loc *time.Location,
	logger *slog.Logger,
) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		catalog:   catalog,
		api:       api,
		sessions:  sessions,
		guard:     guard,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// wallNow is the current wall clock at the salon.
func (s *BookingService) wallNow() domain.LocalDateTime {
	return domain.NewLocalDateTime(s.now().In(s.loc))
}

// Resume restores the wizard for a page load with the given query.
func (s *BookingService) Resume(ctx context.Context, sess *domain.Session, q url.Values) (*BookingView, error) {
	w := booking.FromSession(sess.Selection, sess.Draft)
	u, hasSalonID := booking.ParseURLState(q)

	next, eff := booking.Resume(w, u, hasSalonID)
	commit(sess, next, eff)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.render(ctx, sess, next, eff)
}

// Apply runs one wizard action. A rejected action leaves the session as it
// was.
func (s *BookingService) Apply(ctx context.Context, sess *domain.Session, in BookingEventInput) (*BookingView, error) {
	if in.Type == booking.EventSubmit || in.Type == booking.EventSubmitted {
		return nil, apperrors.InvalidField("type", "bookings are submitted through the submit endpoint")
	}

	w := booking.FromSession(sess.Selection, sess.Draft)
	ev := booking.Event{
		Type:       in.Type,
		StoreID:    in.StoreID,
		ServiceIDs: in.ServiceIDs,
		StylistID:  in.StylistID,
		Date:       in.Date,
		Now:        s.wallNow(),
	}
	if in.Type == booking.EventSelectSlot {
		slot, err := s.findSlot(ctx, w, in.SlotID)
		if err != nil {
			return nil, err
		}
		ev.Slot = slot
	}

	next, eff, err := booking.Apply(w, ev)
	if err != nil {
		return nil, err
	}

	commit(sess, next, eff)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return s.render(ctx, sess, next, eff)
}

// findSlot resolves a slot id against the stylist's slots on the chosen
// date. An unknown id yields a nil slot, which the wizard rejects.
func (s *BookingService) findSlot(ctx context.Context, w booking.Wizard, slotID int64) (*domain.WorkingTimeSlot, error) {
	if slotID <= 0 {
		return nil, apperrors.InvalidField("slotId", "please select a time slot")
	}
	if w.StylistID <= 0 || w.Date == "" {
		return nil, nil
	}
	slots, err := s.catalog.api.AvailableSlots(ctx, w.StylistID, w.Date)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	for i := range slots {
		if slots[i].ID == slotID {
			return &slots[i], nil
		}
	}
	return nil, nil
}

// Slots lists slots for a stylist and date. Zero values fall back to the
// wizard's current choice.
func (s *BookingService) Slots(ctx context.Context, sess *domain.Session, stylistID int64, date string) ([]SlotView, error) {
	if stylistID <= 0 {
		stylistID = sess.Draft.StylistID
	}
	if date == "" {
		date = sess.Draft.Date
	}
	return s.catalog.Slots(ctx, stylistID, date, s.wallNow())
}

// Submit creates the appointment for a complete wizard. A second submission
// of the same booking while the first is recent is refused.
func (s *BookingService) Submit(ctx context.Context, sess *domain.Session) (*SubmitResult, error) {
	if sess.User == nil {
		return nil, apperrors.Unauthorized("please sign in to book")
	}

	w := booking.FromSession(sess.Selection, sess.Draft)
	_, eff, err := booking.Apply(w, booking.Event{Type: booking.EventSubmit, Now: s.wallNow()})
	if err != nil {
		return nil, err
	}

	req := *eff.Create
	req.Email = sess.User.Email
	if req.Phone == "" {
		req.Phone = sess.User.Phone
	}

	key := submitKey(sess.ID, req)
	acquired, err := s.guard.Acquire(ctx, key, submitGuardTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire submit guard: %w", err)
	}
	if !acquired {
		BookingSubmissions.WithLabelValues("duplicate").Inc()
		return nil, apperrors.Conflict("this booking is already being submitted")
	}

	appt, err := s.api.CreateAppointment(ctx, req)
	if err != nil {
		BookingSubmissions.WithLabelValues("failed").Inc()
		if relErr := s.guard.Release(ctx, key); relErr != nil {
			s.logger.WarnContext(ctx, "failed to release submit guard",
				slog.String("key", key),
				slog.String("error", relErr.Error()),
			)
		}
		return nil, err
	}

	next, done, err := booking.Apply(w, booking.Event{Type: booking.EventSubmitted, AppointmentID: appt.ID})
	if err != nil {
		return nil, fmt.Errorf("record appointment %d: %w", appt.ID, err)
	}
	commit(sess, next, done)
	if err := s.sessions.Save(ctx, sess); err != nil {
		// The appointment exists upstream; the confirmation page still works.
		s.logger.WarnContext(ctx, "failed to save session after booking",
			slog.Int64("appointment_id", appt.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.publisher.PublishAppointmentCreated(ctx, sess.ID, appt); err != nil {
		s.logger.WarnContext(ctx, "failed to publish appointment.created event",
			slog.Int64("appointment_id", appt.ID),
			slog.String("error", err.Error()),
		)
	}

	BookingSubmissions.WithLabelValues("created").Inc()
	s.logger.InfoContext(ctx, "appointment created",
		slog.Int64("appointment_id", appt.ID),
		slog.Int64("store_id", req.StoreID),
		slog.Int64("employee_id", req.EmployeeID),
	)

	return &SubmitResult{Appointment: appt, RedirectTo: done.RedirectTo}, nil
}

// Confirmation loads a booked appointment for the confirmation page.
func (s *BookingService) Confirmation(ctx context.Context, id int64) (*domain.Appointment, error) {
	if id <= 0 {
		return nil, apperrors.InvalidField("id", "appointment id must be positive")
	}
	return s.api.Appointment(ctx, id)
}

func submitKey(sessionID string, req domain.AppointmentRequest) string {
	return fmt.Sprintf("%s:%d:%d:%d:%d", sessionID, req.StoreID, req.StoreServiceID, req.EmployeeID, req.SlotID)
}

// commit writes a transition's result into the session. The draft is always
// kept; the selection only changes when the transition persists or clears it.
func commit(sess *domain.Session, w booking.Wizard, eff booking.Effects) {
	sess.Draft = w.Draft()
	switch {
	case eff.ClearPersisted:
		sess.Selection = domain.BookingSelection{}
	case eff.Persist:
		sess.Selection = w.Selection()
	}
}

// render builds the view for a committed transition. A token the salon API
// no longer accepts signs the session out and fails the request; the
// selection it just saved is kept.
func (s *BookingService) render(ctx context.Context, sess *domain.Session, w booking.Wizard, eff booking.Effects) (*BookingView, error) {
	v, err := s.view(ctx, w, eff)
	if err == nil {
		return v, nil
	}
	if soErr := s.sessions.SignOut(ctx, sess); soErr != nil {
		s.logger.WarnContext(ctx, "failed to clear rejected credentials",
			slog.String("session_id", sess.ID),
			slog.String("error", soErr.Error()),
		)
	}
	return nil, err
}

// view runs the fetches a transition asked for. Each failure is reported
// against its own list, except a rejected token, which is returned.
func (s *BookingService) view(ctx context.Context, w booking.Wizard, eff booking.Effects) (*BookingView, error) {
	v := &BookingView{
		Wizard:     w,
		StepName:   w.Step.String(),
		URL:        "/booking?" + eff.URL.Query().Encode(),
		RedirectTo: eff.RedirectTo,
	}

	var (
		mu      sync.Mutex
		authErr error
	)
	fail := func(f booking.Fetch, err error) {
		s.logger.WarnContext(ctx, "booking fetch failed",
			slog.String("fetch", string(f)),
			slog.String("error", err.Error()),
		)
		mu.Lock()
		defer mu.Unlock()
		if errors.Is(err, apperrors.ErrUnauthorized) {
			if authErr == nil {
				authErr = err
			}
			return
		}
		if v.Errors == nil {
			v.Errors = make(map[string]string)
		}
		v.Errors[string(f)] = scopedMessage(err)
	}

	var g errgroup.Group
	for _, f := range eff.Fetch {
		g.Go(func() error {
			var err error
			switch f {
			case booking.FetchCities:
				v.Cities, err = s.catalog.Cities(ctx)
			case booking.FetchStores:
				v.Stores, err = s.catalog.Stores(ctx)
			case booking.FetchStore:
				v.Store, err = s.catalog.Store(ctx, w.StoreID)
			case booking.FetchServices:
				v.Services, err = s.catalog.Services(ctx, w.StoreID)
			case booking.FetchStylists:
				v.Stylists, err = s.catalog.Employees(ctx, w.StoreID)
			case booking.FetchSlots:
				v.Slots, err = s.catalog.Slots(ctx, w.StylistID, w.Date, s.wallNow())
			}
			if err != nil {
				fail(f, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	if authErr != nil {
		return nil, authErr
	}
	return v, nil
}
