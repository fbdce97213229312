package shared

// Page size bounds for listings
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects one page of an ordered result. Number is 1-based.
// The zero value means the first page at the default size.
type PageRequest struct {
	Number int
	Size   int
}

// Normalized fills in defaults and caps the size at MaxPageSize.
func (p PageRequest) Normalized() PageRequest {
	if p.Number < 1 {
		p.Number = 1
	}
	switch {
	case p.Size < 1:
		p.Size = DefaultPageSize
	case p.Size > MaxPageSize:
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the number of rows before the page.
func (p PageRequest) Offset() int {
	p = p.Normalized()
	return (p.Number - 1) * p.Size
}

// Page is one page of items plus the size of the whole result.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPage wraps items fetched for req out of total rows.
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	req = req.Normalized()
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       req.Number,
		PageSize:   req.Size,
		TotalPages: int((total + int64(req.Size) - 1) / int64(req.Size)),
	}
}
