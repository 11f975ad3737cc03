package domain

import "errors"

// WorkingTimeSlot is a bookable window for one stylist on one date.
type WorkingTimeSlot struct {
	ID          int64         `json:"id"`
	StartTime   LocalDateTime `json:"startTime"`
	EndTime     LocalDateTime `json:"endTime"`
	IsAvailable bool          `json:"isAvailable"`
}

// Selectable reports whether the slot starts after now and is free. now is
// compared by wall clock, so callers pass it in the salon's time zone.
func (s WorkingTimeSlot) Selectable(now LocalDateTime) bool {
	return s.IsAvailable && s.StartTime.After(now.Time)
}

func (s *WorkingTimeSlot) Normalize() error {
	if s.ID <= 0 {
		return errors.New("slot id must be positive")
	}
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return errors.New("slot start and end time are required")
	}
	if !s.EndTime.After(s.StartTime.Time) {
		return errors.New("slot must end after it starts")
	}
	return nil
}
