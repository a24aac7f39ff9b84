package ui

import (
	_ "embed"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/skybi/pokedex/internal/api/schema"
	"github.com/skybi/pokedex/internal/api/ui/session"
	"github.com/skybi/pokedex/internal/config"
	"github.com/skybi/pokedex/internal/storage"
)

//go:embed static/index.html
var indexHTML []byte

// Service represents the UI service serving the pokemon list page and the JSON API driving it
type Service struct {
	server    *http.Server
	serverMtx sync.Mutex

	Config *config.Config

	Storage  storage.Driver
	Sessions session.Storage

	writer *schema.Writer
}

// Startup starts up the UI service
func (service *Service) Startup() error {
	server := &http.Server{
		Addr:    service.Config.ListenAddress,
		Handler: service.Router(),
	}
	service.serverMtx.Lock()
	service.server = server
	service.serverMtx.Unlock()
	return server.ListenAndServe()
}

// Shutdown shuts down the UI service
func (service *Service) Shutdown() {
	service.serverMtx.Lock()
	defer service.serverMtx.Unlock()
	if service.server != nil {
		service.server.Close()
		service.server = nil
	}
}

// Router builds the HTTP handler serving all UI endpoints
func (service *Service) Router() http.Handler {
	// Create the HTTP schema writer
	service.writer = &schema.Writer{
		InternalErrorHook: func(err error) {
			log.Error().Err(err).Msg("the UI service experienced an unexpected error")
		},
	}

	// Create the HTTP router
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RedirectSlashes)
	router.Use(middlewareLogRequests)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{service.Config.AllowedOrigin},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusMethodNotAllowed, schema.ErrMethodNotAllowed)
	})

	router.Get("/", service.EndpointIndex)

	// Register the list view endpoints; all of them operate on the session of the caller
	router.Route("/api", func(router chi.Router) {
		router.Use(service.MiddlewareSession)

		router.Get("/state", service.EndpointGetState)
		router.Put("/page", service.EndpointSetPage)
		router.Post("/page/next", service.EndpointNextPage)
		router.Post("/page/prev", service.EndpointPrevPage)
		router.Post("/reload", service.EndpointReload)
		router.Post("/pokemon", service.EndpointAddPokemon)
		router.Delete("/pokemon/{id}", service.EndpointDeletePokemon)
		router.Get("/ws", service.EndpointStream)
	})

	return router
}

// EndpointIndex handles the 'GET /' endpoint
func (service *Service) EndpointIndex(writer http.ResponseWriter, _ *http.Request) {
	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = writer.Write(indexHTML)
}
