package cache

import (
	"context"
	"strconv"
	"sync"

	"github.com/skybi/pokedex/internal/hashmap"
	"github.com/skybi/pokedex/internal/pokemon"
	"golang.org/x/sync/singleflight"
)

// PokemonRepository implements the pokemon.Repository interface in order to cache pages.
// Any successful write clears the whole cache as it shifts the boundaries of every following page.
// Concurrent misses for the same page share a single request to the underlying repository.
type PokemonRepository struct {
	repo  pokemon.Repository
	cache *hashmap.ExpiringMap[int, *pokemon.Page]

	flights singleflight.Group

	// generation is incremented by every invalidation; loads started in an older generation are not cached
	generation uint64
	mtx        sync.Mutex
}

var _ pokemon.Repository = (*PokemonRepository)(nil)

// GetPage retrieves a single page, preferring a cached copy
func (repo *PokemonRepository) GetPage(ctx context.Context, page int) (*pokemon.Page, error) {
	if cached, ok := repo.cache.Lookup(page); ok {
		return clonePage(cached), nil
	}

	repo.mtx.Lock()
	generation := repo.generation
	repo.mtx.Unlock()

	key := strconv.FormatUint(generation, 10) + ":" + strconv.Itoa(page)
	obj, err, _ := repo.flights.Do(key, func() (any, error) {
		obj, err := repo.repo.GetPage(ctx, page)
		if err != nil {
			return nil, err
		}
		repo.mtx.Lock()
		if repo.generation == generation {
			repo.cache.Set(page, clonePage(obj))
		}
		repo.mtx.Unlock()
		return obj, nil
	})
	if err != nil {
		return nil, err
	}
	return clonePage(obj.(*pokemon.Page)), nil
}

// Create creates a new pokemon record and invalidates all cached pages
func (repo *PokemonRepository) Create(ctx context.Context, create *pokemon.Pokemon) error {
	if err := repo.repo.Create(ctx, create); err != nil {
		return err
	}
	repo.invalidate()
	return nil
}

// Delete deletes a pokemon record and invalidates all cached pages
func (repo *PokemonRepository) Delete(ctx context.Context, id int64) error {
	if err := repo.repo.Delete(ctx, id); err != nil {
		return err
	}
	repo.invalidate()
	return nil
}

func (repo *PokemonRepository) invalidate() {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	repo.generation++
	repo.cache.Clear()
}

// clonePage copies the list so callers can never alter a cached page.
// The records themselves are immutable and thus shared.
func clonePage(page *pokemon.Page) *pokemon.Page {
	list := make([]*pokemon.Pokemon, len(page.List))
	copy(list, page.List)
	return &pokemon.Page{
		List:  list,
		Count: page.Count,
	}
}
