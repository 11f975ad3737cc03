package salonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/30-dung/salon-web/internal/domain"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
	"github.com/30-dung/salon-web/pkg/httpclient"
	"github.com/30-dung/salon-web/pkg/pagination"
)

// CreateReview submits the ratings for an appointment.
func (c *Client) CreateReview(ctx context.Context, req domain.ReviewRequest) error {
	return c.call(ctx, "CreateReview", http.MethodPost, "reviews", nil, req, nil)
}

// CreateReply posts a reply under a review.
func (c *Client) CreateReply(ctx context.Context, reviewID int64, req domain.ReplyRequest) error {
	return c.call(ctx, "CreateReply", http.MethodPost, idPath("reviews/%d/replies", reviewID), nil, req, nil)
}

// FilteredReviews returns one page of a store's review rows, newest first.
func (c *Client) FilteredReviews(ctx context.Context, storeID int64, f domain.ReviewFilter, params pagination.Params) (*pagination.Page[domain.Review], error) {
	q := url.Values{}
	if f.EmployeeID > 0 {
		q.Set("employeeId", strconv.FormatInt(f.EmployeeID, 10))
	}
	if f.StoreServiceID > 0 {
		q.Set("storeServiceId", strconv.FormatInt(f.StoreServiceID, 10))
	}
	if f.Rating > 0 {
		q.Set("rating", strconv.Itoa(f.Rating))
	}
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("size", strconv.Itoa(params.Size))
	q.Set("sortBy", "createdAt")
	q.Set("sortDir", "desc")

	var page pagination.Page[domain.Review]
	if err := c.get(ctx, "FilteredReviews", idPath("reviews/store/%d/filtered", storeID), q, &page); err != nil {
		return nil, err
	}
	page.Content = decodeList(ctx, c.logger, "FilteredReviews", page.Content)
	page.Normalize()
	return &page, nil
}

// ReviewSummary returns a store's rating summary.
func (c *Client) ReviewSummary(ctx context.Context, storeID int64) (*domain.ReviewSummary, error) {
	var summary domain.ReviewSummary
	if err := c.get(ctx, "ReviewSummary", idPath("reviews/store/%d/summary", storeID), nil, &summary); err != nil {
		return nil, err
	}
	return decodeOne("ReviewSummary", &summary)
}

// ReviewExists reports whether an appointment has been reviewed. The backend
// answers with either a bare boolean or {"exists": bool}.
func (c *Client) ReviewExists(ctx context.Context, appointmentID int64) (bool, error) {
	q := url.Values{}
	q.Set("appointmentId", strconv.FormatInt(appointmentID, 10))

	var raw json.RawMessage
	if err := c.get(ctx, "ReviewExists", "reviews/existsByAppointmentId", q, &raw); err != nil {
		return false, err
	}

	var exists bool
	if err := json.Unmarshal(raw, &exists); err == nil {
		return exists, nil
	}
	var wrapped struct {
		Exists *bool `json:"exists"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Exists != nil {
		return *wrapped.Exists, nil
	}
	return false, apperrors.Upstream(httpclient.GenericErrorMessage,
		fmt.Errorf("ReviewExists: unexpected payload %s", bytes.TrimSpace(raw)))
}

// SubmitFeedback forwards a contact-form message.
func (c *Client) SubmitFeedback(ctx context.Context, fb domain.Feedback) error {
	return c.call(ctx, "SubmitFeedback", http.MethodPost, "feedback/submit", nil, fb, nil)
}
