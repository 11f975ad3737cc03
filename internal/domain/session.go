package domain

import "time"

// User is the signed-in customer as kept in the session.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// BookingSelection holds the booking choices that survive a page reload.
type BookingSelection struct {
	StoreID            int64   `json:"storeId,omitempty"`
	SelectedServiceIDs []int64 `json:"selectedServices,omitempty"`
	AppointmentID      int64   `json:"appointmentId,omitempty"`
	IsFullySelected    bool    `json:"isFullySelected"`
}

// BookingDraft holds the in-progress wizard screen and the stylist and time
// choices made on it.
type BookingDraft struct {
	Step      int              `json:"step"`
	Phone     string           `json:"phone,omitempty"`
	StylistID int64            `json:"stylistId,omitempty"`
	Date      string           `json:"date,omitempty"`
	Slot      *WorkingTimeSlot `json:"slot,omitempty"`
}

// Session is the server-side state of one browser.
type Session struct {
	ID          string           `json:"id"`
	AccessToken string           `json:"access_token,omitempty"`
	UserRole    string           `json:"user_role,omitempty"`
	User        *User            `json:"user,omitempty"`
	TokenExpiry time.Time        `json:"token_expiry,omitempty"`
	Selection   BookingSelection `json:"selection"`
	Draft       BookingDraft     `json:"draft"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewSession returns an empty session with the given id.
func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, UpdatedAt: now}
}

// Authenticated reports whether the session holds a usable access token.
func (s *Session) Authenticated(now time.Time) bool {
	if s.AccessToken == "" {
		return false
	}
	return s.TokenExpiry.IsZero() || now.Before(s.TokenExpiry)
}

// ClearCredentials forgets the token, role and user.
func (s *Session) ClearCredentials() {
	s.AccessToken = ""
	s.UserRole = ""
	s.User = nil
	s.TokenExpiry = time.Time{}
}

// ClearBooking drops the persisted selection and the wizard draft.
func (s *Session) ClearBooking() {
	s.Selection = BookingSelection{}
	s.Draft = BookingDraft{}
}

// UserID returns the signed-in user's id, or 0.
func (s *Session) UserID() int64 {
	if s.User == nil {
		return 0
	}
	return s.User.ID
}
