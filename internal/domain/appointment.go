package domain

import (
	"errors"
	"fmt"
	"strings"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCanceled  AppointmentStatus = "CANCELED"
)

// ParseAppointmentStatus accepts any letter case and the CANCELLED spelling.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch st := AppointmentStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCanceled:
		return st, nil
	case "CANCELLED":
		return AppointmentCanceled, nil
	default:
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
}

// CanCancel reports whether an appointment in this state may be canceled.
func (s AppointmentStatus) CanCancel() bool {
	return s == AppointmentPending || s == AppointmentConfirmed
}

// Invoice carries the amount billed for an appointment.
type Invoice struct {
	ID          int64   `json:"id,omitempty"`
	TotalAmount float64 `json:"totalAmount"`
}

// Appointment is a booking of one store service with one stylist.
type Appointment struct {
	ID           int64             `json:"id"`
	Slug         string            `json:"slug"`
	Store        *Store            `json:"store,omitempty"`
	StoreService *StoreService     `json:"storeService,omitempty"`
	Employee     *Employee         `json:"employee,omitempty"`
	StartTime    LocalDateTime     `json:"startTime"`
	EndTime      LocalDateTime     `json:"endTime"`
	Status       AppointmentStatus `json:"status"`
	Invoice      *Invoice          `json:"invoice,omitempty"`
}

// Normalize canonicalizes the status and rejects rows without an id.
func (a *Appointment) Normalize() error {
	if a.ID <= 0 {
		return errors.New("appointment id must be positive")
	}
	st, err := ParseAppointmentStatus(string(a.Status))
	if err != nil {
		return err
	}
	a.Status = st
	return nil
}

// AppointmentRequest is the body sent to create an appointment.
type AppointmentRequest struct {
	StoreID        int64         `json:"storeId"`
	StoreServiceID int64         `json:"storeServiceId"`
	EmployeeID     int64         `json:"employeeId"`
	SlotID         int64         `json:"workingSlotId"`
	StartTime      LocalDateTime `json:"startTime"`
	EndTime        LocalDateTime `json:"endTime"`
	Phone          string        `json:"phone,omitempty"`
	Email          string        `json:"email,omitempty"`
}
