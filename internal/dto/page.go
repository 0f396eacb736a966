package dto

const (
	// DefaultPageSize is applied when the size query parameter is absent.
	DefaultPageSize = 10
	// DefaultSort orders results by name ascending when no sort is given.
	DefaultSort = "name,asc"
)

// PageRequest carries pagination and ordering for list queries.
// Page is 0-based; Sort uses the "field,direction" form.
type PageRequest struct {
	Page int
	Size int
	Sort string
}

// Offset returns the row offset for the requested page.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// ProductPage is a bounded slice of an ordered result set together with
// its total-count metadata.
type ProductPage struct {
	Content       []ProductResponse `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
}

// NewProductPage builds the page envelope for one result slice.
func NewProductPage(content []ProductResponse, req PageRequest, totalElements int64) *ProductPage {
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((totalElements + int64(req.Size) - 1) / int64(req.Size))
	}
	return &ProductPage{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: totalElements,
		TotalPages:    totalPages,
	}
}
