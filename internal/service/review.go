package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/30-dung/salon-web/internal/domain"
	"github.com/30-dung/salon-web/internal/event"
	"github.com/30-dung/salon-web/internal/review"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
	"github.com/30-dung/salon-web/pkg/pagination"
)

// ReplyInput is a reply posted under a review. StoreID, Page and the filter
// fields describe the list the browser is showing so it can be reloaded.
type ReplyInput struct {
	Comment        string `json:"comment" validate:"max=1000"`
	ParentReplyID  *int64 `json:"parentReplyId"`
	StoreID        int64  `json:"storeId" validate:"gte=0"`
	Page           int    `json:"page" validate:"gte=0"`
	EmployeeID     int64  `json:"employeeId" validate:"gte=0"`
	StoreServiceID int64  `json:"storeServiceId" validate:"gte=0"`
	Rating         int    `json:"rating" validate:"gte=0,lte=5"`
}

// CreateReviewInput rates a completed appointment.
type CreateReviewInput struct {
	AppointmentID  int64  `json:"appointmentId" validate:"required,gt=0"`
	StoreRating    *int   `json:"storeRating" validate:"omitempty,gte=1,lte=5"`
	EmployeeRating *int   `json:"employeeRating" validate:"omitempty,gte=1,lte=5"`
	ServiceRating  *int   `json:"serviceRating" validate:"omitempty,gte=1,lte=5"`
	Comment        string `json:"comment" validate:"max=1000"`
}

// ReviewsView is a store's summary and one page of its reviews. Errors holds
// a message per part that failed to load.
type ReviewsView struct {
	Summary *review.Summary   `json:"summary,omitempty"`
	Page    *review.PageView  `json:"page,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ReviewService reads and writes store reviews.
type ReviewService struct {
	api       ReviewAPI
	appts     AppointmentAPI
	publisher event.Publisher
	pageSize  int
	logger    *slog.Logger
}

// NewReviewService creates a review service listing pageSize reviews per
// page.
func NewReviewService(api ReviewAPI, appts AppointmentAPI, publisher event.Publisher, pageSize int, logger *slog.Logger) *ReviewService {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &ReviewService{
		api:       api,
		appts:     appts,
		publisher: publisher,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// Summary returns the rating overview of a store.
func (s *ReviewService) Summary(ctx context.Context, storeID int64) (*review.Summary, error) {
	if storeID <= 0 {
		return nil, apperrors.InvalidField("storeId", "store id must be positive")
	}
	raw, err := s.api.ReviewSummary(ctx, storeID)
	if err != nil {
		return nil, err
	}
	summary := review.BuildSummary(*raw)
	return &summary, nil
}

// List returns one page of combined review cards. A page past the end is
// clamped to the last page.
func (s *ReviewService) List(ctx context.Context, storeID int64, q review.Query) (*review.PageView, error) {
	if storeID <= 0 {
		return nil, apperrors.InvalidField("storeId", "store id must be positive")
	}

	params := pagination.Params{Page: q.Page, Size: s.pageSize}
	page, err := s.api.FilteredReviews(ctx, storeID, q.Filter, params)
	if err != nil {
		return nil, err
	}

	if clamped := pagination.Clamp(q.Page, page.TotalPages); clamped != q.Page {
		if page.TotalPages > 0 {
			params.Page = clamped
			if page, err = s.api.FilteredReviews(ctx, storeID, q.Filter, params); err != nil {
				return nil, err
			}
		} else {
			page.Number = 0
			page.Normalize()
		}
	}

	view := review.BuildPage(*page)
	return &view, nil
}

// Reply posts a reply and reloads the summary and the page the browser is
// on. Invalid replies are rejected without calling the salon API.
func (s *ReviewService) Reply(ctx context.Context, sess *domain.Session, reviewID int64, in ReplyInput) (*ReviewsView, error) {
	if reviewID <= 0 {
		return nil, apperrors.InvalidField("reviewId", "review id must be positive")
	}
	req, err := review.NewReply(in.Comment, sess.UserID(), in.ParentReplyID)
	if err != nil {
		return nil, err
	}

	err = s.api.CreateReply(ctx, reviewID, req)
	ReviewSubmissions.WithLabelValues("reply", resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishReplyCreated(ctx, reviewID, req); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review.reply-created event",
			slog.Int64("review_id", reviewID),
			slog.String("error", err.Error()),
		)
	}

	if in.StoreID <= 0 {
		return &ReviewsView{}, nil
	}
	q := review.Query{
		Filter: domain.ReviewFilter{EmployeeID: in.EmployeeID, StoreServiceID: in.StoreServiceID, Rating: in.Rating},
		Page:   in.Page,
	}
	return s.Reload(ctx, in.StoreID, q)
}

// Reload fetches the summary and a page of reviews. Each failure is reported
// against its own part; a rejected token is returned instead.
func (s *ReviewService) Reload(ctx context.Context, storeID int64, q review.Query) (*ReviewsView, error) {
	v := &ReviewsView{}
	var authErr error
	fail := func(part string, err error) {
		s.logger.WarnContext(ctx, "review fetch failed",
			slog.String("part", part),
			slog.Int64("store_id", storeID),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, apperrors.ErrUnauthorized) {
			authErr = err
			return
		}
		if v.Errors == nil {
			v.Errors = make(map[string]string)
		}
		v.Errors[part] = scopedMessage(err)
	}

	summary, err := s.Summary(ctx, storeID)
	if err != nil {
		fail("summary", err)
	} else {
		v.Summary = summary
	}

	page, err := s.List(ctx, storeID, q)
	if err != nil {
		fail("reviews", err)
	} else {
		v.Page = page
	}
	if authErr != nil {
		return nil, authErr
	}
	return v, nil
}

// Create reviews a completed appointment of the signed-in user.
func (s *ReviewService) Create(ctx context.Context, sess *domain.Session, in CreateReviewInput) error {
	appt, err := s.appts.Appointment(ctx, in.AppointmentID)
	if err != nil {
		return err
	}
	exists, err := s.api.ReviewExists(ctx, in.AppointmentID)
	if err != nil {
		return err
	}

	req, err := review.NewReview(*appt, exists, sess.UserID(), review.Ratings{
		Store:    in.StoreRating,
		Employee: in.EmployeeRating,
		Service:  in.ServiceRating,
	}, in.Comment)
	if err != nil {
		return err
	}

	err = s.api.CreateReview(ctx, req)
	ReviewSubmissions.WithLabelValues("review", resultLabel(err)).Inc()
	if err != nil {
		return err
	}

	if err := s.publisher.PublishReviewCreated(ctx, req); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review.created event",
			slog.Int64("appointment_id", req.AppointmentID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
