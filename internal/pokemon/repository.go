package pokemon

import "context"

// Repository defines the pokemon repository API
type Repository interface {
	// GetPage retrieves a single page of pokemon records together with the total record count.
	// Pages are 1-indexed.
	GetPage(ctx context.Context, page int) (*Page, error)

	// Create creates a new pokemon record.
	// The remote representation of the created record is not returned.
	Create(ctx context.Context, create *Pokemon) error

	// Delete deletes a pokemon record by its ID
	Delete(ctx context.Context, id int64) error
}
