package review

import (
	"strconv"

	"github.com/30-dung/salon-web/internal/domain"
)

// StarCount is one bar of the rating histogram.
type StarCount struct {
	Stars   int     `json:"stars"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Summary is the rating overview shown above a store's reviews.
type Summary struct {
	AverageRating float64                  `json:"averageRating"`
	TotalReviews  int                      `json:"totalReviews"`
	Histogram     []StarCount              `json:"histogram"`
	Employees     []domain.RatingBreakdown `json:"employees"`
	Services      []domain.RatingBreakdown `json:"services"`
}

// BuildSummary fills the histogram for every star from 5 down to 1 and drops
// breakdown entries nobody has reviewed.
func BuildSummary(s domain.ReviewSummary) Summary {
	hist := make([]StarCount, 0, 5)
	sum := 0
	for stars := 5; stars >= 1; stars-- {
		n := s.RatingDistribution[strconv.Itoa(stars)]
		if n < 0 {
			n = 0
		}
		sum += n
		hist = append(hist, StarCount{Stars: stars, Count: n})
	}

	total := s.TotalReviews
	if total < sum {
		total = sum
	}
	if total > 0 {
		for i := range hist {
			hist[i].Percent = float64(hist[i].Count) * 100 / float64(total)
		}
	}

	return Summary{
		AverageRating: s.AverageRating,
		TotalReviews:  total,
		Histogram:     hist,
		Employees:     reviewed(s.EmployeeRatings),
		Services:      reviewed(s.ServiceRatings),
	}
}

func reviewed(in []domain.RatingBreakdown) []domain.RatingBreakdown {
	out := make([]domain.RatingBreakdown, 0, len(in))
	for _, b := range in {
		if b.TotalReviews >= 1 {
			out = append(out, b)
		}
	}
	return out
}
