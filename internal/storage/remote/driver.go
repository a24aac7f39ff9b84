package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skybi/pokedex/internal/pokemon"
	"github.com/skybi/pokedex/internal/storage"
	"golang.org/x/time/rate"
)

// Options configures the remote storage driver
type Options struct {
	// BaseURL is the base address of the remote pokemon API (e.g. 'http://localhost:4321/api')
	BaseURL string

	// Timeout limits every single request; defaults to 10 seconds
	Timeout time.Duration

	// RateLimit limits the outgoing requests per second; 0 disables rate limiting
	RateLimit float64

	// RateBurst is the maximum burst size allowed by the rate limiter
	RateBurst int

	// Client replaces the HTTP client built from Timeout; used by tests
	Client *http.Client
}

// Driver represents the storage driver implementation that talks to the remote pokemon JSON API
type Driver struct {
	options Options
	pokemon *PokemonRepository
}

var _ storage.Driver = (*Driver)(nil)

// New creates a new remote storage driver.
// Use Initialize to validate the options and initialize the repository implementation.
func New(options Options) *Driver {
	return &Driver{
		options: options,
	}
}

// Initialize validates the base URL and initializes the repository implementation
func (driver *Driver) Initialize(_ context.Context) error {
	base, err := parseBaseURL(driver.options.BaseURL)
	if err != nil {
		return err
	}

	client := driver.options.Client
	if client == nil {
		timeout := driver.options.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if driver.options.RateLimit > 0 {
		burst := driver.options.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(driver.options.RateLimit), burst)
	}

	driver.pokemon = &PokemonRepository{
		base:    base,
		client:  client,
		limiter: limiter,
	}
	return nil
}

// Pokemon provides the remote pokemon repository implementation
func (driver *Driver) Pokemon() pokemon.Repository {
	return driver.pokemon
}

// Close discards the repository implementation and its idle connections
func (driver *Driver) Close() {
	if driver.pokemon != nil {
		driver.pokemon.client.CloseIdleConnections()
		driver.pokemon = nil
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("the remote API base URL is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse remote API base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported remote API base URL scheme %q", base.Scheme)
	}
	if base.Host == "" {
		return nil, errors.New("the remote API base URL lacks a host")
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	return base, nil
}
