package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/skybi/pokedex/internal/pokemon"
	"golang.org/x/time/rate"
)

const maxResponseBodySize = 1 << 20

// PokemonRepository implements the pokemon.Repository interface using the remote JSON API
type PokemonRepository struct {
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
}

var _ pokemon.Repository = (*PokemonRepository)(nil)

// GetPage retrieves a single page using 'GET /pokemon.json?page={page}'
func (repo *PokemonRepository) GetPage(ctx context.Context, page int) (*pokemon.Page, error) {
	const op = "list pokemon"

	endpoint := repo.endpoint("pokemon.json")
	endpoint.RawQuery = url.Values{"page": {strconv.Itoa(page)}}.Encode()

	resp, err := repo.do(ctx, op, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := new(pokemon.Page)
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(result); err != nil {
		return nil, &pokemon.ParseError{Op: op, Wrapping: err}
	}
	if result.Count < 0 {
		return nil, &pokemon.ParseError{Op: op, Wrapping: fmt.Errorf("negative total count %d", result.Count)}
	}
	if result.List == nil {
		result.List = []*pokemon.Pokemon{}
	}
	for i, obj := range result.List {
		if obj == nil {
			return nil, &pokemon.ParseError{Op: op, Wrapping: fmt.Errorf("list entry %d is null", i)}
		}
	}
	return result, nil
}

// Create creates a new pokemon record using 'POST /pokemon.json'.
// The response body is ignored.
func (repo *PokemonRepository) Create(ctx context.Context, create *pokemon.Pokemon) error {
	const op = "create pokemon"

	body, err := json.Marshal(create)
	if err != nil {
		return fmt.Errorf("%s: encode request body: %w", op, err)
	}

	resp, err := repo.do(ctx, op, http.MethodPost, repo.endpoint("pokemon.json"), body)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Delete deletes a pokemon record using 'DELETE /pokemon/{id}.json'.
// The response body is ignored.
func (repo *PokemonRepository) Delete(ctx context.Context, id int64) error {
	const op = "delete pokemon"

	resp, err := repo.do(ctx, op, http.MethodDelete, repo.endpoint("pokemon", strconv.FormatInt(id, 10)+".json"), nil)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

func (repo *PokemonRepository) endpoint(elems ...string) *url.URL {
	return repo.base.JoinPath(elems...)
}

// do performs a single request and makes sure that a non-nil response carries a 2xx status code
func (repo *PokemonRepository) do(ctx context.Context, op, method string, endpoint *url.URL, body []byte) (*http.Response, error) {
	if err := repo.limiter.Wait(ctx); err != nil {
		return nil, &pokemon.TransportError{Op: op, Wrapping: err}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := repo.client.Do(req)
	if err != nil {
		return nil, &pokemon.TransportError{Op: op, Wrapping: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drain(resp)
		return nil, &pokemon.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Wrapping:   errors.New(resp.Status),
		}
	}
	return resp, nil
}

// drain discards the rest of a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
	_ = resp.Body.Close()
}
