// Package booking implements the booking wizard as an explicit state machine.
//
// Apply is pure: it takes the current Wizard and an Event and returns the
// next Wizard together with the Effects the caller must carry out (URL sync,
// writes to the persisted selection, catalog fetches, the create call). A
// rejected event returns an error and leaves the wizard untouched.
package booking

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/30-dung/salon-web/internal/domain"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
)

// Step is the screen the wizard is on. Stylist and time selection happen
// inline on the overview.
type Step int

const (
	StepOverview Step = iota
	StepSelectStore
	StepSelectService
	StepConfirmation
)

func (s Step) String() string {
	switch s {
	case StepOverview:
		return "overview"
	case StepSelectStore:
		return "select_store"
	case StepSelectService:
		return "select_service"
	case StepConfirmation:
		return "confirmation"
	default:
		return "step(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseStep reads the numeric step query parameter. Unknown values and the
// confirmation step map to the overview.
func ParseStep(s string) Step {
	n, err := strconv.Atoi(s)
	if err != nil {
		return StepOverview
	}
	switch st := Step(n); st {
	case StepSelectStore, StepSelectService:
		return st
	default:
		return StepOverview
	}
}

// Wizard is the full booking state of one visitor.
type Wizard struct {
	Step          Step                    `json:"step"`
	StoreID       int64                   `json:"storeId,omitempty"`
	ServiceIDs    []int64                 `json:"serviceIds,omitempty"`
	StylistID     int64                   `json:"stylistId,omitempty"`
	Date          string                  `json:"date,omitempty"`
	Slot          *domain.WorkingTimeSlot `json:"slot,omitempty"`
	AppointmentID int64                   `json:"appointmentId,omitempty"`
	Phone         string                  `json:"phone,omitempty"`
}

// FromSession rebuilds a wizard from the persisted selection and draft.
func FromSession(sel domain.BookingSelection, d domain.BookingDraft) Wizard {
	w := Wizard{
		Step:          Step(d.Step),
		StoreID:       sel.StoreID,
		ServiceIDs:    slices.Clone(sel.SelectedServiceIDs),
		AppointmentID: sel.AppointmentID,
		StylistID:     d.StylistID,
		Date:          d.Date,
		Slot:          d.Slot,
		Phone:         d.Phone,
	}
	if w.Step < StepOverview || w.Step > StepConfirmation {
		w.Step = StepOverview
	}
	return w
}

// Selection is the part of the wizard kept across reloads.
func (w Wizard) Selection() domain.BookingSelection {
	return domain.BookingSelection{
		StoreID:            w.StoreID,
		SelectedServiceIDs: slices.Clone(w.ServiceIDs),
		AppointmentID:      w.AppointmentID,
		IsFullySelected:    w.IsFullySelected(),
	}
}

// Draft is the session-only part of the wizard.
func (w Wizard) Draft() domain.BookingDraft {
	return domain.BookingDraft{
		Step:      int(w.Step),
		Phone:     w.Phone,
		StylistID: w.StylistID,
		Date:      w.Date,
		Slot:      w.Slot,
	}
}

// IsFullySelected reports whether both a store and a service are chosen,
// which unlocks stylist and time selection.
func (w Wizard) IsFullySelected() bool {
	return w.StoreID > 0 && len(w.ServiceIDs) > 0
}

// ReadyToSubmit reports whether every field of the booking is set.
func (w Wizard) ReadyToSubmit() bool {
	return w.IsFullySelected() && w.StylistID > 0 && w.Date != "" && w.Slot != nil
}

// URL returns the query state that resumes this wizard.
func (w Wizard) URL() URLState {
	return URLState{Step: w.Step, SalonID: w.StoreID, Phone: w.Phone}
}

// URLState is the resumable part of the wizard carried in the query string.
type URLState struct {
	Step    Step   `json:"step"`
	SalonID int64  `json:"salonId,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Query encodes the state as step, salonId and phone parameters.
func (u URLState) Query() url.Values {
	q := url.Values{}
	q.Set("step", strconv.Itoa(int(u.Step)))
	if u.SalonID > 0 {
		q.Set("salonId", strconv.FormatInt(u.SalonID, 10))
	}
	if u.Phone != "" {
		q.Set("phone", u.Phone)
	}
	return q
}

// ParseURLState reads step, salonId and phone. The second result reports
// whether a usable salonId was present.
func ParseURLState(q url.Values) (URLState, bool) {
	u := URLState{Step: ParseStep(q.Get("step")), Phone: q.Get("phone")}
	id, err := strconv.ParseInt(q.Get("salonId"), 10, 64)
	if err != nil || id <= 0 {
		return u, false
	}
	u.SalonID = id
	return u, true
}

// Fetch names a list or record the view needs loaded after a transition.
type Fetch string

const (
	FetchCities   Fetch = "cities"
	FetchStores   Fetch = "stores"
	FetchStore    Fetch = "store"
	FetchServices Fetch = "services"
	FetchStylists Fetch = "stylists"
	FetchSlots    Fetch = "slots"
)

// Effects are the side effects of a transition.
type Effects struct {
	URL            URLState                   `json:"url"`
	Persist        bool                       `json:"persist"`
	ClearPersisted bool                       `json:"clearPersisted"`
	Fetch          []Fetch                    `json:"fetch"`
	Create         *domain.AppointmentRequest `json:"-"`
	RedirectTo     string                     `json:"redirectTo,omitempty"`
}

func (e Effects) Needs(f Fetch) bool {
	return slices.Contains(e.Fetch, f)
}

// EventType names a user action on the wizard.
type EventType string

const (
	EventOpenStorePicker   EventType = "open_store_picker"
	EventOpenServicePicker EventType = "open_service_picker"
	EventConfirmStore      EventType = "confirm_store"
	EventConfirmServices   EventType = "confirm_services"
	EventSelectStylist     EventType = "select_stylist"
	EventSelectDate        EventType = "select_date"
	EventSelectSlot        EventType = "select_slot"
	EventSubmit            EventType = "submit"
	EventSubmitted         EventType = "submitted"
	EventBack              EventType = "back"
	EventLeave             EventType = "leave"
)

// Event is one user action with its payload.
type Event struct {
	Type          EventType
	StoreID       int64
	ServiceIDs    []int64
	StylistID     int64
	Date          string
	Slot          *domain.WorkingTimeSlot
	AppointmentID int64
	Now           domain.LocalDateTime
}

// Apply runs one transition.
func Apply(w Wizard, ev Event) (Wizard, Effects, error) {
	next := w
	next.ServiceIDs = slices.Clone(w.ServiceIDs)
	var eff Effects

	switch ev.Type {
	case EventOpenStorePicker:
		if w.Step != StepOverview {
			return w, Effects{}, notAllowed(ev.Type, w.Step)
		}
		next.Step = StepSelectStore
		eff.Fetch = []Fetch{FetchCities, FetchStores}

	case EventOpenServicePicker:
		if w.Step != StepOverview {
			return w, Effects{}, notAllowed(ev.Type, w.Step)
		}
		if w.StoreID <= 0 {
			return w, Effects{}, apperrors.InvalidField("storeId", "please select a store first")
		}
		next.Step = StepSelectService
		eff.Fetch = []Fetch{FetchServices}

	case EventConfirmStore:
		if w.Step != StepSelectStore {
			return w, Effects{}, notAllowed(ev.Type, w.Step)
		}
		if ev.StoreID <= 0 {
			return w, Effects{}, apperrors.InvalidField("storeId", "please select a store")
		}
		next = changeStore(next, ev.StoreID)
		next.Step = StepOverview
		eff.Persist = true
		eff.Fetch = []Fetch{FetchStore}

	case EventConfirmServices:
		if w.Step != StepSelectService {
			return w, Effects{}, notAllowed(ev.Type, w.Step)
		}
		ids := dedupe(ev.ServiceIDs)
		if len(ids) == 0 {
			return w, Effects{}, apperrors.InvalidField("serviceIds", "please select at least one service")
		}
		if len(ids) > 1 {
			return w, Effects{}, apperrors.InvalidField("serviceIds", "only one service can be booked per appointment")
		}
		next.ServiceIDs = ids
		next.Slot = nil
		next.Step = StepOverview
		eff.Persist = true
		eff.Fetch = []Fetch{FetchStylists}
		if next.StylistID > 0 && next.Date != "" {
			eff.Fetch = append(eff.Fetch, FetchSlots)
		}

	case EventSelectStylist:
		if err := requireInlineSelection(w, ev.Type); err != nil {
			return w, Effects{}, err
		}
		if ev.StylistID <= 0 {
			return w, Effects{}, apperrors.InvalidField("stylistId", "please select a stylist")
		}
		next.StylistID = ev.StylistID
		next.Slot = nil
		if next.Date != "" {
			eff.Fetch = []Fetch{FetchSlots}
		}

	case EventSelectDate:
		if err := requireInlineSelection(w, ev.Type); err != nil {
			return w, Effects{}, err
		}
		if _, err := domain.ParseDate(ev.Date); err != nil {
			return w, Effects{}, apperrors.InvalidField("date", err.Error())
		}
		next.Date = ev.Date
		next.Slot = nil
		if next.StylistID > 0 {
			eff.Fetch = []Fetch{FetchSlots}
		}

	case EventSelectSlot:
		if err := requireInlineSelection(w, ev.Type); err != nil {
			return w, Effects{}, err
		}
		if w.StylistID <= 0 || w.Date == "" {
			return w, Effects{}, apperrors.InvalidInput("please select a stylist and a date first")
		}
		if ev.Slot == nil || !ev.Slot.Selectable(ev.Now) {
			return w, Effects{}, apperrors.InvalidField("slotId", "this time slot is not available")
		}
		if ev.Slot.StartTime.Date() != w.Date {
			return w, Effects{}, apperrors.InvalidField("slotId", "the time slot is not on the selected date")
		}
		slot := *ev.Slot
		next.Slot = &slot

	case EventSubmit:
		if w.Step != StepOverview {
			return w, Effects{}, notAllowed(ev.Type, w.Step)
		}
		if !w.ReadyToSubmit() {
			return w, Effects{}, apperrors.InvalidInput("please select a store, service, stylist, date and time slot")
		}
		if !w.Slot.StartTime.After(ev.Now.Time) {
			return w, Effects{}, apperrors.InvalidField("slotId", "the selected time has already passed")
		}
		eff.Create = &domain.AppointmentRequest{
			StoreID:        w.StoreID,
			StoreServiceID: w.ServiceIDs[0],
			EmployeeID:     w.StylistID,
			SlotID:         w.Slot.ID,
			StartTime:      w.Slot.StartTime,
			EndTime:        w.Slot.EndTime,
			Phone:          w.Phone,
		}

	case EventSubmitted:
		if w.Step != StepOverview || !w.ReadyToSubmit() {
			return w, Effects{}, notAllowed(ev.Type, w.Step)
		}
		if ev.AppointmentID <= 0 {
			return w, Effects{}, apperrors.InvalidField("appointmentId", "appointment id must be positive")
		}
		next.AppointmentID = ev.AppointmentID
		next.Step = StepConfirmation
		eff.Persist = true
		eff.RedirectTo = fmt.Sprintf("/booking/confirmation/%d", ev.AppointmentID)

	case EventBack:
		if w.Step != StepSelectStore && w.Step != StepSelectService {
			return w, Effects{}, notAllowed(ev.Type, w.Step)
		}
		next.Step = StepOverview

	case EventLeave:
		next = Wizard{}
		eff.ClearPersisted = true

	default:
		return w, Effects{}, apperrors.InvalidField("type", fmt.Sprintf("unknown booking event %q", ev.Type))
	}

	eff.URL = next.URL()
	if eff.Fetch == nil {
		eff.Fetch = []Fetch{}
	}
	return next, eff, nil
}

// Resume restores the wizard for a page load carrying q. Without a salonId the
// persisted selection is dropped; a salonId other than the persisted store is
// a store change.
func Resume(w Wizard, q URLState, hasSalonID bool) (Wizard, Effects) {
	var eff Effects
	next := w
	next.ServiceIDs = slices.Clone(w.ServiceIDs)

	switch {
	case !hasSalonID:
		next = Wizard{Phone: w.Phone}
		eff.ClearPersisted = true
	case q.SalonID != w.StoreID:
		next = changeStore(next, q.SalonID)
		eff.Persist = true
	}

	if q.Phone != "" {
		next.Phone = q.Phone
	}

	next.Step = q.Step
	if next.Step == StepSelectService && next.StoreID <= 0 {
		next.Step = StepOverview
	}

	eff.Fetch = []Fetch{}
	if next.Step == StepSelectStore {
		eff.Fetch = append(eff.Fetch, FetchCities, FetchStores)
	}
	if next.StoreID > 0 {
		eff.Fetch = append(eff.Fetch, FetchStore, FetchServices)
	}
	if next.IsFullySelected() {
		eff.Fetch = append(eff.Fetch, FetchStylists)
		if next.StylistID > 0 && next.Date != "" {
			eff.Fetch = append(eff.Fetch, FetchSlots)
		}
	}

	eff.URL = next.URL()
	return next, eff
}

// changeStore pins a new store and clears every choice made under the old one.
func changeStore(w Wizard, storeID int64) Wizard {
	w.StoreID = storeID
	w.ServiceIDs = nil
	w.StylistID = 0
	w.Date = ""
	w.Slot = nil
	w.AppointmentID = 0
	return w
}

func requireInlineSelection(w Wizard, t EventType) error {
	if w.Step != StepOverview {
		return notAllowed(t, w.Step)
	}
	if !w.IsFullySelected() {
		return apperrors.InvalidInput("please select a store and a service first")
	}
	return nil
}

func notAllowed(t EventType, s Step) error {
	return apperrors.InvalidInput(fmt.Sprintf("%s is not allowed on the %s step", t, s))
}

func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
