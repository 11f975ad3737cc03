package service

import (
	"context"
	"errors"

	"github.com/30-dung/salon-web/internal/domain"
	"github.com/30-dung/salon-web/internal/salonapi"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
	"github.com/30-dung/salon-web/pkg/httpclient"
	"github.com/30-dung/salon-web/pkg/pagination"
)

// AuthAPI is the account part of the salon API.
type AuthAPI interface {
	Register(ctx context.Context, req salonapi.RegisterRequest) error
	Login(ctx context.Context, req salonapi.LoginRequest) (*salonapi.LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req salonapi.ResetPasswordRequest) error
	Profile(ctx context.Context) (*domain.User, error)
}

// CatalogAPI is the store, service, stylist and slot part of the salon API.
type CatalogAPI interface {
	Stores(ctx context.Context) ([]domain.Store, error)
	Store(ctx context.Context, id int64) (*domain.Store, error)
	LocateStores(ctx context.Context, city, district string) ([]domain.Store, error)
	Cities(ctx context.Context) ([]string, error)
	Districts(ctx context.Context, city string) ([]string, error)
	StoreServices(ctx context.Context, storeID int64) ([]domain.StoreService, error)
	Employees(ctx context.Context, storeID int64) ([]domain.Employee, error)
	AvailableSlots(ctx context.Context, employeeID int64, date string) ([]domain.WorkingTimeSlot, error)
}

// AppointmentAPI is the appointment part of the salon API.
type AppointmentAPI interface {
	CreateAppointment(ctx context.Context, req domain.AppointmentRequest) (*domain.Appointment, error)
	Appointment(ctx context.Context, id int64) (*domain.Appointment, error)
	UserAppointments(ctx context.Context, email string) ([]domain.Appointment, error)
	CancelAppointment(ctx context.Context, id int64) error
}

// ReviewAPI is the review part of the salon API.
type ReviewAPI interface {
	CreateReview(ctx context.Context, req domain.ReviewRequest) error
	CreateReply(ctx context.Context, reviewID int64, req domain.ReplyRequest) error
	FilteredReviews(ctx context.Context, storeID int64, f domain.ReviewFilter, params pagination.Params) (*pagination.Page[domain.Review], error)
	ReviewSummary(ctx context.Context, storeID int64) (*domain.ReviewSummary, error)
	ReviewExists(ctx context.Context, appointmentID int64) (bool, error)
}

// FeedbackAPI forwards contact form messages.
type FeedbackAPI interface {
	SubmitFeedback(ctx context.Context, fb domain.Feedback) error
}

// scopedMessage is the text shown next to the part of a view whose fetch
// failed.
func scopedMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return httpclient.GenericErrorMessage
}
