package review

import (
	"github.com/30-dung/salon-web/internal/domain"
)

type groupKey struct {
	appointmentID int64
	reviewerID    int64
	reviewID      int64
}

func keyOf(r domain.Review) groupKey {
	if r.AppointmentID <= 0 {
		return groupKey{reviewID: r.ID}
	}
	return groupKey{appointmentID: r.AppointmentID, reviewerID: r.Reviewer.ID}
}

// Combine groups the review rows of one appointment and reviewer into a
// single card, keeping the order in which each group first appears. Rows
// without an appointment stay on their own.
func Combine(rows []domain.Review) []domain.CombinedReview {
	index := make(map[groupKey]int)
	cards := make([]domain.CombinedReview, 0, len(rows))
	replies := make([][]domain.ReviewReply, 0, len(rows))

	for _, r := range rows {
		k := keyOf(r)
		i, ok := index[k]
		if !ok {
			i = len(cards)
			index[k] = i
			cards = append(cards, domain.CombinedReview{
				ID:            r.ID,
				AppointmentID: r.AppointmentID,
				Reviewer:      r.Reviewer,
				CreatedAt:     r.CreatedAt,
			})
			replies = append(replies, nil)
		}

		card := &cards[i]
		card.ReviewIDs = append(card.ReviewIDs, r.ID)
		if card.Comment == "" {
			card.Comment = r.Comment
		}
		if r.CreatedAt.After(card.CreatedAt.Time) {
			card.CreatedAt = r.CreatedAt
		}

		rating := r.Rating
		switch r.TargetType {
		case domain.TargetStore:
			if card.StoreRating == nil {
				card.StoreRating = &rating
			}
		case domain.TargetEmployee:
			if card.EmployeeRating == nil {
				card.EmployeeRating = &rating
				card.EmployeeName = r.TargetName
			}
		case domain.TargetStoreService:
			if card.ServiceRating == nil {
				card.ServiceRating = &rating
				card.ServiceName = r.TargetName
			}
		}

		replies[i] = append(replies[i], r.Replies...)
	}

	for i := range cards {
		cards[i].Replies = BuildReplyTree(replies[i])
	}
	return cards
}
