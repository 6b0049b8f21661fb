package portal

// PageSizes are the selectable page sizes.
var PageSizes = []int{10, 25, 50, 100}

// DefaultPageSize is used when the requested size is not one of PageSizes.
const DefaultPageSize = 10

// Page is one page of a list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}

// Paginate slices items[(page-1)*size : page*size]. The page is clamped into
// [1, TotalPages] and TotalPages is never below 1.
func Paginate[T any](items []T, page, size int) Page[T] {
	if !validPageSize(size) {
		size = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pageItems := items[start:end]
	if pageItems == nil {
		pageItems = []T{}
	}

	return Page[T]{
		Items:      pageItems,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		Total:      total,
	}
}

func validPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}
