package cache

import (
	"context"
	"time"

	"github.com/skybi/pokedex/internal/hashmap"
	"github.com/skybi/pokedex/internal/pokemon"
	"github.com/skybi/pokedex/internal/storage"
)

// Driver represents a storage driver implementation that wraps another one in order to implement in-memory caching
type Driver struct {
	underlying storage.Driver
	lifetime   time.Duration
	pokemon    *PokemonRepository
}

var _ storage.Driver = (*Driver)(nil)

// New returns a new caching storage driver whose cached pages live for the given lifetime
func New(underlying storage.Driver, lifetime time.Duration) *Driver {
	return &Driver{
		underlying: underlying,
		lifetime:   lifetime,
	}
}

// Initialize initializes the underlying driver and the caching repository
func (driver *Driver) Initialize(ctx context.Context) error {
	if err := driver.underlying.Initialize(ctx); err != nil {
		return err
	}

	pageCache := hashmap.NewExpiring[int, *pokemon.Page](driver.lifetime)
	pageCache.ScheduleCleanupTask(cleanupInterval(driver.lifetime))
	driver.pokemon = &PokemonRepository{
		repo:  driver.underlying.Pokemon(),
		cache: pageCache,
	}
	return nil
}

// Pokemon provides the caching pokemon repository implementation
func (driver *Driver) Pokemon() pokemon.Repository {
	return driver.pokemon
}

// Close stops the cache cleanup and closes the underlying driver
func (driver *Driver) Close() {
	if driver.pokemon != nil {
		driver.pokemon.cache.StopCleanupTask()
		driver.pokemon = nil
	}
	driver.underlying.Close()
}

func cleanupInterval(lifetime time.Duration) time.Duration {
	if lifetime < time.Second {
		return time.Second
	}
	return lifetime
}
