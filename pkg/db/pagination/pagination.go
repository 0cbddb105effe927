package pagination

// Pagination carries page-number paging parameters bound from the query string.
type Pagination struct {
	Page    int `form:"page,default=1"`
	PerPage int `form:"per_page,default=20" validate:"gte=1,lte=100"`
}

// PageInfo is the paging metadata returned alongside every list response.
type PageInfo struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Normalize clamps page and per_page into their valid ranges.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

func (p Pagination) Limit() int {
	return p.Normalize().PerPage
}

// BuildPageInfo derives paging metadata from the normalized request and row count.
func BuildPageInfo(p Pagination, total int64) PageInfo {
	n := p.Normalize()
	lastPage := int(total) / n.PerPage
	if int(total)%n.PerPage != 0 || lastPage == 0 {
		lastPage++
	}
	return PageInfo{
		CurrentPage: n.Page,
		LastPage:    lastPage,
		PerPage:     n.PerPage,
		Total:       total,
	}
}
