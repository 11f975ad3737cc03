package review

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/30-dung/salon-web/internal/domain"
	apperrors "github.com/30-dung/salon-web/pkg/errors"
)

const maxCommentLength = 1000

// NewReply validates a reply before anything is sent upstream. A nil parent
// replies to the review itself.
func NewReply(comment string, userID int64, parentReplyID *int64) (domain.ReplyRequest, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return domain.ReplyRequest{}, apperrors.InvalidField("comment", "please enter a reply")
	}
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return domain.ReplyRequest{}, apperrors.InvalidField("comment", fmt.Sprintf("reply must be at most %d characters", maxCommentLength))
	}
	if userID <= 0 {
		return domain.ReplyRequest{}, apperrors.InvalidField("user", "please sign in to reply")
	}
	if parentReplyID != nil && *parentReplyID <= 0 {
		parentReplyID = nil
	}
	return domain.ReplyRequest{UserID: userID, Comment: comment, ParentReplyID: parentReplyID}, nil
}

// Ratings are the scores a customer gives for one appointment. A nil score
// is not submitted.
type Ratings struct {
	Store    *int
	Employee *int
	Service  *int
}

// NewReview validates a review of a completed, not yet reviewed appointment.
func NewReview(appt domain.Appointment, alreadyReviewed bool, userID int64, r Ratings, comment string) (domain.ReviewRequest, error) {
	if userID <= 0 {
		return domain.ReviewRequest{}, apperrors.InvalidField("user", "please sign in to leave a review")
	}
	if appt.Status != domain.AppointmentCompleted {
		return domain.ReviewRequest{}, apperrors.InvalidInput("only completed appointments can be reviewed")
	}
	if alreadyReviewed {
		return domain.ReviewRequest{}, apperrors.Conflict("this appointment has already been reviewed")
	}

	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return domain.ReviewRequest{}, apperrors.InvalidField("comment", fmt.Sprintf("comment must be at most %d characters", maxCommentLength))
	}

	req := domain.ReviewRequest{AppointmentID: appt.ID, UserID: userID, Comment: comment}
	add := func(field string, score *int, t domain.TargetType, id int64) error {
		if score == nil {
			return nil
		}
		if *score < 1 || *score > 5 {
			return apperrors.InvalidField(field, "rating must be between 1 and 5")
		}
		if id <= 0 {
			return apperrors.InvalidField(field, "nothing to rate for this appointment")
		}
		req.Ratings = append(req.Ratings, domain.ReviewTarget{TargetType: t, TargetID: id, Rating: *score})
		return nil
	}

	var storeID, employeeID, serviceID int64
	if appt.Store != nil {
		storeID = appt.Store.ID
	}
	if appt.Employee != nil {
		employeeID = appt.Employee.ID
	}
	if appt.StoreService != nil {
		serviceID = appt.StoreService.ID
	}

	if err := add("storeRating", r.Store, domain.TargetStore, storeID); err != nil {
		return domain.ReviewRequest{}, err
	}
	if err := add("employeeRating", r.Employee, domain.TargetEmployee, employeeID); err != nil {
		return domain.ReviewRequest{}, err
	}
	if err := add("serviceRating", r.Service, domain.TargetStoreService, serviceID); err != nil {
		return domain.ReviewRequest{}, err
	}
	if len(req.Ratings) == 0 {
		return domain.ReviewRequest{}, apperrors.InvalidField("rating", "please rate at least one of store, stylist or service")
	}
	return req, nil
}

// Query is a parsed review list request.
type Query struct {
	Filter domain.ReviewFilter
	Page   int
}

// ParseQuery reads employeeId, storeServiceId, rating and the zero-based
// page from a query string.
func ParseQuery(q url.Values) (Query, error) {
	var out Query
	var err error
	if out.Filter.EmployeeID, err = positiveInt(q, "employeeId"); err != nil {
		return Query{}, err
	}
	if out.Filter.StoreServiceID, err = positiveInt(q, "storeServiceId"); err != nil {
		return Query{}, err
	}
	rating, err := positiveInt(q, "rating")
	if err != nil {
		return Query{}, err
	}
	if rating > 5 {
		return Query{}, apperrors.InvalidField("rating", "rating must be between 1 and 5")
	}
	out.Filter.Rating = int(rating)

	if s := q.Get("page"); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil {
			return Query{}, apperrors.InvalidField("page", "page must be a number")
		}
		if p < 0 {
			p = 0
		}
		out.Page = p
	}
	return out, nil
}

func positiveInt(q url.Values, name string) (int64, error) {
	s := q.Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, apperrors.InvalidField(name, name+" must be a positive number")
	}
	return v, nil
}
