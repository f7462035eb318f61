package core

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination holds 1-based page query params.
type Pagination struct {
	Page     int `query:"page"`
	PageSize int `query:"pageSize"`
}

func (p *Pagination) Clean() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p Pagination) HasNext(total int) bool {
	return p.Page*p.PageSize < total
}

func (p Pagination) HasPrevious() bool {
	return p.Page > 1
}
