package storage

import (
	"context"

	"github.com/skybi/pokedex/internal/pokemon"
)

// Driver represents a storage driver
type Driver interface {
	// Initialize initializes the storage driver (i.e. validates and prepares the remote connection)
	Initialize(ctx context.Context) error

	// Pokemon provides a pokemon repository implementation
	Pokemon() pokemon.Repository

	// Close closes the storage driver and releases its resources
	Close()
}
