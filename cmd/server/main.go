package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skybi/pokedex/internal/api"
	"github.com/skybi/pokedex/internal/config"
	"github.com/skybi/pokedex/internal/storage"
	"github.com/skybi/pokedex/internal/storage/cache"
	"github.com/skybi/pokedex/internal/storage/remote"
)

func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})
	log.Info().Msg("starting up...")

	// Load the application configuration
	log.Info().Msg("loading configuration...")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if cfg.IsEnvProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Str("config", fmt.Sprintf("%+v", cfg)).Msg("")

	// Initialize the remote storage driver, optionally wrapped by the page cache
	log.Info().Str("base_url", cfg.APIBaseURL).Msg("initializing remote pokemon API driver...")
	var driver storage.Driver = remote.New(remote.Options{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
		RateBurst: cfg.APIRateBurst,
	})
	if cfg.IsPageCacheEnabled() {
		log.Info().Dur("ttl", cfg.PageCacheTTL).Msg("enabling page cache...")
		driver = cache.New(driver, cfg.PageCacheTTL)
	}
	if err := driver.Initialize(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("could not initialize the storage driver")
	}
	defer driver.Close()

	// Start up the UI service
	log.Info().Str("address", cfg.ListenAddress).Msg("starting up UI service...")
	apis := &api.Service{
		Config:  cfg,
		Storage: driver,
	}
	apiErrs := make(chan error, 1)
	if err := apis.Startup(apiErrs); err != nil {
		log.Fatal().Err(err).Msg("could not start up the UI service")
	}
	go func() {
		err := <-apiErrs
		log.Fatal().Err(err).Msg("the UI service raised an unexpected error")
	}()
	defer func() {
		log.Info().Msg("shutting down the UI service...")
		apis.Shutdown()
	}()

	log.Info().Msg("done!")
	defer log.Info().Msg("shutting down...")

	// Wait for the application to be terminated
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt)
	<-shutdown
}
