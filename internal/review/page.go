package review

import (
	"github.com/30-dung/salon-web/internal/domain"
	"github.com/30-dung/salon-web/pkg/pagination"
)

// PageView is one page of combined review cards with its pager.
type PageView struct {
	Reviews       []domain.CombinedReview `json:"reviews"`
	Number        int                     `json:"number"`
	Size          int                     `json:"size"`
	TotalPages    int                     `json:"totalPages"`
	TotalElements int64                   `json:"totalElements"`
	First         bool                    `json:"first"`
	Last          bool                    `json:"last"`
	Empty         bool                    `json:"empty"`
	Nav           pagination.Nav          `json:"nav"`
}

// BuildPage combines the rows of one upstream page.
func BuildPage(p pagination.Page[domain.Review]) PageView {
	return PageView{
		Reviews:       Combine(p.Content),
		Number:        p.Number,
		Size:          p.Size,
		TotalPages:    p.TotalPages,
		TotalElements: p.TotalElements,
		First:         p.First,
		Last:          p.Last,
		Empty:         p.Empty,
		Nav:           pagination.NavFor(p.Number, p.TotalPages),
	}
}
