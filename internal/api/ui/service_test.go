package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skybi/pokedex/internal/api/schema"
	"github.com/skybi/pokedex/internal/api/ui/session/storage/inmem"
	"github.com/skybi/pokedex/internal/config"
	"github.com/skybi/pokedex/internal/pokemon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository is a pokemon.Repository keeping its records in a slice
type memoryRepository struct {
	mtx     sync.Mutex
	records []*pokemon.Pokemon
	failing bool
	loads   int
	creates int
}

func newMemoryRepository(n int) *memoryRepository {
	repo := &memoryRepository{}
	for i := 1; i <= n; i++ {
		repo.records = append(repo.records, &pokemon.Pokemon{ID: int64(i), Name: "pokemon-" + string(rune('a'+i-1))})
	}
	return repo
}

func (repo *memoryRepository) setFailing(failing bool) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	repo.failing = failing
}

func (repo *memoryRepository) counts() (loads, creates int) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	return repo.loads, repo.creates
}

func (repo *memoryRepository) GetPage(_ context.Context, page int) (*pokemon.Page, error) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	repo.loads++
	if repo.failing {
		return nil, &pokemon.TransportError{Op: "list pokemon", StatusCode: http.StatusServiceUnavailable}
	}
	start := min((page-1)*pokemon.PageSize, len(repo.records))
	end := min(start+pokemon.PageSize, len(repo.records))
	list := make([]*pokemon.Pokemon, end-start)
	copy(list, repo.records[start:end])
	return &pokemon.Page{List: list, Count: len(repo.records)}, nil
}

func (repo *memoryRepository) Create(_ context.Context, create *pokemon.Pokemon) error {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	repo.creates++
	if repo.failing {
		return &pokemon.TransportError{Op: "create pokemon", StatusCode: http.StatusServiceUnavailable}
	}
	repo.records = append(repo.records, create)
	return nil
}

func (repo *memoryRepository) Delete(_ context.Context, id int64) error {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()
	if repo.failing {
		return &pokemon.TransportError{Op: "delete pokemon", StatusCode: http.StatusServiceUnavailable}
	}
	records := repo.records[:0]
	for _, obj := range repo.records {
		if obj.ID != id {
			records = append(records, obj)
		}
	}
	repo.records = records
	return nil
}

type memoryDriver struct {
	repo *memoryRepository
}

func (driver *memoryDriver) Initialize(_ context.Context) error {
	return nil
}

func (driver *memoryDriver) Pokemon() pokemon.Repository {
	return driver.repo
}

func (driver *memoryDriver) Close() {}

type testClient struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newTestClient(t *testing.T, repo *memoryRepository) *testClient {
	t.Helper()

	sessions, err := inmem.New()
	require.NoError(t, err)

	service := &Service{
		Config: &config.Config{
			AllowedOrigin:   "*",
			SessionLifetime: time.Hour,
		},
		Storage:  &memoryDriver{repo: repo},
		Sessions: sessions,
	}
	server := httptest.NewServer(service.Router())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testClient{
		t:      t,
		server: server,
		client: &http.Client{Jar: jar},
	}
}

func (client *testClient) do(method, path, body string) *http.Response {
	client.t.Helper()
	req, err := http.NewRequest(method, client.server.URL+path, strings.NewReader(body))
	require.NoError(client.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.client.Do(req)
	require.NoError(client.t, err)
	client.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (client *testClient) state(method, path, body string, expectedStatus int) *stateResponse {
	client.t.Helper()
	resp := client.do(method, path, body)
	require.Equal(client.t, expectedStatus, resp.StatusCode)
	state := new(stateResponse)
	require.NoError(client.t, json.NewDecoder(resp.Body).Decode(state))
	return state
}

func (client *testClient) errors(method, path, body string, expectedStatus int) *schema.ErrorResponse {
	client.t.Helper()
	resp := client.do(method, path, body)
	require.Equal(client.t, expectedStatus, resp.StatusCode)
	response := new(schema.ErrorResponse)
	require.NoError(client.t, json.NewDecoder(resp.Body).Decode(response))
	return response
}

func ids(state *stateResponse) []int64 {
	result := make([]int64, 0, len(state.Data))
	for _, obj := range state.Data {
		result = append(result, obj.ID)
	}
	return result
}

func TestIndex(t *testing.T) {
	client := newTestClient(t, newMemoryRepository(0))

	resp := client.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
}

func TestStateCreatesAndReusesSession(t *testing.T) {
	repo := newMemoryRepository(7)
	client := newTestClient(t, repo)

	resp := client.do(http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, obj := range resp.Cookies() {
		if obj.Name == sessionCookieName {
			cookie = obj
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	state := new(stateResponse)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(state))
	assert.Equal(t, &schema.PaginationMetadata{
		Page:          1,
		PageSize:      5,
		PageCount:     2,
		TotalCount:    7,
		IncludedCount: 5,
		HasPrev:       false,
		HasNext:       true,
	}, state.Pagination)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(state))
	assert.False(t, state.Loading)

	client.state(http.MethodGet, "/api/state", "", http.StatusOK)
	loads, _ := repo.counts()
	assert.Equal(t, 1, loads)
}

func TestNavigation(t *testing.T) {
	repo := newMemoryRepository(7)
	client := newTestClient(t, repo)
	client.state(http.MethodGet, "/api/state", "", http.StatusOK)

	state := client.state(http.MethodPost, "/api/page/next", "", http.StatusOK)
	assert.Equal(t, 2, state.Pagination.Page)
	assert.Equal(t, []int64{6, 7}, ids(state))

	state = client.state(http.MethodPost, "/api/page/next", "", http.StatusOK)
	assert.Equal(t, 2, state.Pagination.Page)
	loads, _ := repo.counts()
	assert.Equal(t, 2, loads)

	state = client.state(http.MethodPost, "/api/page/prev", "", http.StatusOK)
	assert.Equal(t, 1, state.Pagination.Page)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(state))

	state = client.state(http.MethodPut, "/api/page?number=9", "", http.StatusOK)
	assert.Equal(t, 2, state.Pagination.Page)

	state = client.state(http.MethodPost, "/api/reload", "", http.StatusOK)
	assert.Equal(t, 2, state.Pagination.Page)
	loads, _ = repo.counts()
	assert.Equal(t, 5, loads)
}

func TestSetPageRejectsInvalidNumbers(t *testing.T) {
	client := newTestClient(t, newMemoryRepository(7))

	response := client.errors(http.MethodPut, "/api/page?number=abc", "", http.StatusBadRequest)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "validation.query.parameter.invalidType", response.Errors[0].Type)

	response = client.errors(http.MethodPut, "/api/page?number=0", "", http.StatusBadRequest)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "validation.query.parameter.number.outOfRange", response.Errors[0].Type)

	response = client.errors(http.MethodPut, "/api/page", "", http.StatusBadRequest)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "validation.query.parameter.missing", response.Errors[0].Type)
}

func TestAddPokemonOnLastPage(t *testing.T) {
	repo := newMemoryRepository(7)
	client := newTestClient(t, repo)
	client.state(http.MethodGet, "/api/state", "", http.StatusOK)
	client.state(http.MethodPost, "/api/page/next", "", http.StatusOK)

	state := client.state(http.MethodPost, "/api/pokemon", `{"id":100,"name":"Mew"}`, http.StatusCreated)
	assert.Equal(t, []int64{6, 7, 100}, ids(state))
	assert.Equal(t, "Mew", state.Data[2].Name)
	assert.Equal(t, 8, state.Pagination.TotalCount)
	loads, _ := repo.counts()
	assert.Equal(t, 2, loads)
}

func TestAddPokemonRejectsInvalidPayloads(t *testing.T) {
	repo := newMemoryRepository(3)
	client := newTestClient(t, repo)

	response := client.errors(http.MethodPost, "/api/pokemon", `{"id":"abc","name":"Mew"}`, http.StatusBadRequest)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "validation.requestBody.parameter.invalidType", response.Errors[0].Type)

	response = client.errors(http.MethodPost, "/api/pokemon", `{"id":0,"name":"Mew"}`, http.StatusBadRequest)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "validation.requestBody.parameter.number.outOfRange", response.Errors[0].Type)

	response = client.errors(http.MethodPost, "/api/pokemon", `{}`, http.StatusBadRequest)
	assert.Len(t, response.Errors, 2)

	_, creates := repo.counts()
	assert.Zero(t, creates)
}

func TestDeletePokemonRetreatsFromEmptyPage(t *testing.T) {
	repo := newMemoryRepository(6)
	client := newTestClient(t, repo)
	client.state(http.MethodGet, "/api/state", "", http.StatusOK)
	client.state(http.MethodPost, "/api/page/next", "", http.StatusOK)

	state := client.state(http.MethodDelete, "/api/pokemon/6", "", http.StatusOK)
	assert.Equal(t, 1, state.Pagination.Page)
	assert.Equal(t, 1, state.Pagination.PageCount)
	assert.Equal(t, 5, state.Pagination.TotalCount)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(state))

	response := client.errors(http.MethodDelete, "/api/pokemon/abc", "", http.StatusBadRequest)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "validation.url.parameter.invalidType", response.Errors[0].Type)
}

func TestUpstreamFailure(t *testing.T) {
	repo := newMemoryRepository(7)
	client := newTestClient(t, repo)
	client.state(http.MethodGet, "/api/state", "", http.StatusOK)

	repo.setFailing(true)
	response := client.errors(http.MethodPost, "/api/reload", "", http.StatusBadGateway)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "upstream.unavailable", response.Errors[0].Type)
	assert.Equal(t, true, response.Errors[0].Details["retryable"])

	client.errors(http.MethodPost, "/api/pokemon", `{"id":100,"name":"Mew"}`, http.StatusBadGateway)

	state := client.state(http.MethodGet, "/api/state", "", http.StatusOK)
	assert.NotEmpty(t, state.Notice)
	assert.Equal(t, 7, state.Pagination.TotalCount)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(state))

	repo.setFailing(false)
	state = client.state(http.MethodPost, "/api/reload", "", http.StatusOK)
	assert.Empty(t, state.Notice)
}

// syncBuffer collects log output written by server goroutines
type syncBuffer struct {
	mtx sync.Mutex
	buf strings.Builder
}

func (buffer *syncBuffer) Write(p []byte) (int, error) {
	buffer.mtx.Lock()
	defer buffer.mtx.Unlock()
	return buffer.buf.Write(p)
}

func (buffer *syncBuffer) String() string {
	buffer.mtx.Lock()
	defer buffer.mtx.Unlock()
	return buffer.buf.String()
}

func TestFailedMountStillCreatesSession(t *testing.T) {
	logs := new(syncBuffer)
	previous := log.Logger
	log.Logger = zerolog.New(logs)
	t.Cleanup(func() { log.Logger = previous })

	repo := newMemoryRepository(7)
	repo.setFailing(true)
	client := newTestClient(t, repo)

	state := client.state(http.MethodGet, "/api/state", "", http.StatusOK)
	assert.NotEmpty(t, state.Notice)
	assert.Empty(t, state.Data)
	assert.Equal(t, 1, state.Pagination.PageCount)
	assert.Contains(t, logs.String(), "could not load the first page of a new session")
}

func TestUnknownRoutesAndMethods(t *testing.T) {
	client := newTestClient(t, newMemoryRepository(0))

	response := client.errors(http.MethodGet, "/nope", "", http.StatusNotFound)
	assert.Equal(t, "generic.notFound", response.Errors[0].Type)

	response = client.errors(http.MethodDelete, "/api/state", "", http.StatusMethodNotAllowed)
	assert.Equal(t, "generic.methodNotAllowed", response.Errors[0].Type)
}

func TestStreamPushesStateChanges(t *testing.T) {
	client := newTestClient(t, newMemoryRepository(7))
	client.state(http.MethodGet, "/api/state", "", http.StatusOK)

	serverURL, err := url.Parse(client.server.URL)
	require.NoError(t, err)
	header := http.Header{}
	for _, cookie := range client.client.Jar.Cookies(serverURL) {
		header.Add("Cookie", cookie.String())
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+serverURL.Host+"/api/ws", header)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	initial := new(stateResponse)
	require.NoError(t, conn.ReadJSON(initial))
	assert.Equal(t, 1, initial.Pagination.Page)

	client.state(http.MethodPost, "/api/page/next", "", http.StatusOK)

	for {
		pushed := new(stateResponse)
		require.NoError(t, conn.ReadJSON(pushed))
		if pushed.Pagination.Page == 2 && !pushed.Loading {
			assert.Equal(t, []int64{6, 7}, ids(pushed))
			return
		}
	}
}
