package pagination

// Params is a zero-based page request sent to the salon API.
type Params struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// Page mirrors the page envelope returned by the salon API.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
	Empty         bool  `json:"empty"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// Normalize fills in a nil content slice and recomputes the flags the upstream
// may have omitted.
func (p *Page[T]) Normalize() {
	if p.Content == nil {
		p.Content = []T{}
	}
	if p.TotalPages < 0 {
		p.TotalPages = 0
	}
	p.Empty = len(p.Content) == 0
	p.First = p.Number <= 0
	p.Last = p.Number >= p.TotalPages-1
}

// Clamp bounds a zero-based page index to [0, totalPages-1]. With no pages the
// result is 0.
func Clamp(page, totalPages int) int {
	if totalPages <= 0 || page < 0 {
		return 0
	}
	if page > totalPages-1 {
		return totalPages - 1
	}
	return page
}

// Nav is the pager state rendered to the user. Pages are 1-based here.
type Nav struct {
	DisplayPage int  `json:"displayPage"`
	TotalPages  int  `json:"totalPages"`
	HasPrev     bool `json:"hasPrev"`
	HasNext     bool `json:"hasNext"`
	PrevPage    int  `json:"prevPage"`
	NextPage    int  `json:"nextPage"`
}

// NavFor computes the pager for a zero-based page index. PrevPage and NextPage
// are zero-based and already clamped.
func NavFor(number, totalPages int) Nav {
	number = Clamp(number, totalPages)
	return Nav{
		DisplayPage: number + 1,
		TotalPages:  totalPages,
		HasPrev:     number > 0,
		HasNext:     number < totalPages-1,
		PrevPage:    Clamp(number-1, totalPages),
		NextPage:    Clamp(number+1, totalPages),
	}
}
