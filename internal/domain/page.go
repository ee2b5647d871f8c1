package domain

// ============================================================
// Pagination
// ============================================================

// Page is one backend page of results. PageNo is zero based.
type Page[T any] struct {
	Content       []T `json:"content"`
	PageNo        int `json:"pageNo"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

// HasNext reports whether the "next page" control should be enabled.
func (p Page[T]) HasNext() bool {
	return !(p.PageNo*p.PageSize+p.PageSize >= p.TotalElements)
}

// HasPrevious reports whether the "previous page" control should be enabled.
func (p Page[T]) HasPrevious() bool {
	return p.PageNo > 0
}
