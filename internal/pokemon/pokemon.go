package pokemon

import (
	"strconv"
	"strings"
)

// PageSize is the fixed amount of records shown on a single page.
// It is a client-side constant and never sent to the remote API.
const PageSize = 5

// Pokemon represents a single pokemon record
type Pokemon struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Page represents a single page of pokemon records as returned by the remote API.
// Count is the total amount of records across all pages, not the size of List.
type Page struct {
	List  []*Pokemon `json:"list"`
	Count int        `json:"count"`
}

// PageCount calculates the amount of pages needed to display totalCount records with pageSize records per page.
// There is always at least one page, even if there are no records at all.
func PageCount(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 1
	}
	return (totalCount + pageSize - 1) / pageSize
}

// ParseID parses a raw pokemon ID as entered by a user
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "id", Message: "the ID has to be an integer"}
	}
	if err := ValidateID(id); err != nil {
		return 0, err
	}
	return id, nil
}

// ValidateID makes sure a pokemon ID is usable as a record identity
func ValidateID(id int64) error {
	if id <= 0 {
		return &ValidationError{Field: "id", Message: "the ID has to be a positive integer"}
	}
	return nil
}
