package listsync

import "github.com/skybi/pokedex/internal/pokemon"

// State represents a point-in-time copy of the list view state of a Controller
type State struct {
	Items       []*pokemon.Pokemon `json:"items"`
	TotalCount  int                `json:"total_count"`
	CurrentPage int                `json:"current_page"`
	PageSize    int                `json:"page_size"`
	PageCount   int                `json:"page_count"`

	// Loading is set while a page load is in flight
	Loading bool `json:"loading"`

	// Notice holds the user-facing message of the last failed operation.
	// It is cleared by the next successful one.
	Notice string `json:"notice,omitempty"`
}

// IsLastPage reports whether the current page is the last one
func (state State) IsLastPage() bool {
	return state.CurrentPage == state.PageCount
}

// HasPrev reports whether there is a page before the current one
func (state State) HasPrev() bool {
	return state.CurrentPage > 1
}

// HasNext reports whether there is a page after the current one
func (state State) HasNext() bool {
	return state.CurrentPage < state.PageCount
}
