package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TargetType names what a review row rates.
type TargetType string

const (
	TargetStore        TargetType = "STORE"
	TargetEmployee     TargetType = "EMPLOYEE"
	TargetStoreService TargetType = "STORE_SERVICE"
)

// ParseTargetType maps the SERVICE alias onto STORE_SERVICE.
func ParseTargetType(s string) (TargetType, error) {
	switch t := TargetType(strings.ToUpper(strings.TrimSpace(s))); t {
	case TargetStore, TargetEmployee, TargetStoreService:
		return t, nil
	case "SERVICE":
		return TargetStoreService, nil
	default:
		return "", fmt.Errorf("unknown review target type %q", s)
	}
}

func (t *TargetType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTargetType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Reviewer identifies the author of a review or reply.
type Reviewer struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Review is one rated target of an appointment as stored upstream.
type Review struct {
	ID            int64         `json:"id"`
	TargetType    TargetType    `json:"targetType"`
	TargetID      int64         `json:"targetId"`
	TargetName    string        `json:"targetName,omitempty"`
	AppointmentID int64         `json:"appointmentId"`
	Reviewer      Reviewer      `json:"reviewer"`
	Rating        int           `json:"rating"`
	Comment       string        `json:"comment"`
	CreatedAt     LocalDateTime `json:"createdAt"`
	Replies       []ReviewReply `json:"replies"`
}

func (r *Review) Normalize() error {
	if r.ID <= 0 {
		return errors.New("review id must be positive")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("review %d has rating %d outside 1-5", r.ID, r.Rating)
	}
	r.Comment = strings.TrimSpace(r.Comment)
	if r.Replies == nil {
		r.Replies = []ReviewReply{}
	}
	return nil
}

// ReplyUser identifies the author of a reply.
type ReplyUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ReviewReply is a node in a review's reply thread. ParentReplyID is nil for
// a reply to the review itself.
type ReviewReply struct {
	ID            int64         `json:"id"`
	ReviewID      int64         `json:"reviewId"`
	ParentReplyID *int64        `json:"parentReplyId"`
	User          ReplyUser     `json:"user"`
	Comment       string        `json:"comment"`
	CreatedAt     LocalDateTime `json:"createdAt"`
	IsStoreReply  bool          `json:"isStoreReply"`
	Depth         int           `json:"depth"`
	Children      []ReviewReply `json:"children"`
}

// CombinedReview is one card built from the rows a reviewer left for a
// single appointment.
type CombinedReview struct {
	ID             int64         `json:"id"`
	AppointmentID  int64         `json:"appointmentId"`
	Reviewer       Reviewer      `json:"reviewer"`
	StoreRating    *int          `json:"storeRating,omitempty"`
	EmployeeRating *int          `json:"employeeRating,omitempty"`
	ServiceRating  *int          `json:"serviceRating,omitempty"`
	EmployeeName   string        `json:"employeeName,omitempty"`
	ServiceName    string        `json:"serviceName,omitempty"`
	Comment        string        `json:"comment"`
	CreatedAt      LocalDateTime `json:"createdAt"`
	ReviewIDs      []int64       `json:"reviewIds"`
	Replies        []ReviewReply `json:"replies"`
}

// RatingBreakdown is the average for one employee or store service.
type RatingBreakdown struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}

// ReviewSummary is the rating summary the salon API returns for a store.
type ReviewSummary struct {
	AverageRating      float64           `json:"averageRating"`
	TotalReviews       int               `json:"totalReviews"`
	RatingDistribution map[string]int    `json:"ratingDistribution"`
	EmployeeRatings    []RatingBreakdown `json:"employeeRatings"`
	ServiceRatings     []RatingBreakdown `json:"serviceRatings"`
}

func (s *ReviewSummary) Normalize() error {
	if s.TotalReviews < 0 {
		return errors.New("review total must not be negative")
	}
	if s.RatingDistribution == nil {
		s.RatingDistribution = map[string]int{}
	}
	return nil
}

// ReviewFilter narrows a store's review list.
type ReviewFilter struct {
	EmployeeID     int64 `json:"employeeId,omitempty"`
	StoreServiceID int64 `json:"storeServiceId,omitempty"`
	Rating         int   `json:"rating,omitempty"`
}

// ReviewTarget is one rating inside a review submission.
type ReviewTarget struct {
	TargetType TargetType `json:"targetType"`
	TargetID   int64      `json:"targetId"`
	Rating     int        `json:"rating"`
}

// ReviewRequest submits the ratings for a completed appointment.
type ReviewRequest struct {
	AppointmentID int64          `json:"appointmentId"`
	UserID        int64          `json:"userId"`
	Comment       string         `json:"comment"`
	Ratings       []ReviewTarget `json:"ratings"`
}

// ReplyRequest posts a reply to a review or to another reply.
type ReplyRequest struct {
	UserID        int64  `json:"userId"`
	Comment       string `json:"comment"`
	ParentReplyID *int64 `json:"parentReplyId"`
}
