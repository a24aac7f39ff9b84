package schema

// PaginatedResponse represents a unified paginated API response
type PaginatedResponse[T any] struct {
	Pagination *PaginationMetadata `json:"pagination"`
	Data       []T                 `json:"data"`
}

// PaginationMetadata represents the metadata present in a PaginatedResponse.
// Pages are 1-indexed; PageCount is always at least 1.
type PaginationMetadata struct {
	Page          int  `json:"page"`
	PageSize      int  `json:"page_size"`
	PageCount     int  `json:"page_count"`
	TotalCount    int  `json:"total_count"`
	IncludedCount int  `json:"included_count"`
	HasPrev       bool `json:"has_prev"`
	HasNext       bool `json:"has_next"`
}

// BuildPaginatedResponse builds a unified paginated API response
func BuildPaginatedResponse[T any](page, pageSize, pageCount, totalCount int, data []T) *PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return &PaginatedResponse[T]{
		Pagination: &PaginationMetadata{
			Page:          page,
			PageSize:      pageSize,
			PageCount:     pageCount,
			TotalCount:    totalCount,
			IncludedCount: len(data),
			HasPrev:       page > 1,
			HasNext:       page < pageCount,
		},
		Data: data,
	}
}
