package dto

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination mirrors the page metadata returned next to every paged list.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	NextPage    *int  `json:"next_page"`
	PrevPage    *int  `json:"prev_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
}

// NormalizePage clamps page to >= 1 and per to 1..MaxPerPage, defaulting per to DefaultPerPage.
func NormalizePage(page, per int) (int, int) {
	if page < 1 {
		page = 1
	}
	if per < 1 {
		per = DefaultPerPage
	}
	if per > MaxPerPage {
		per = MaxPerPage
	}
	return page, per
}

func NewPagination(page, per int, total int64) *Pagination {
	page, per = NormalizePage(page, per)

	totalPages := int(total) / per
	if int(total)%per != 0 {
		totalPages++
	}

	p := &Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
	}
	if page < totalPages {
		next := page + 1
		p.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}
