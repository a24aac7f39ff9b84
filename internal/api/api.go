package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/skybi/pokedex/internal/api/ui"
	"github.com/skybi/pokedex/internal/api/ui/session/storage/inmem"
	"github.com/skybi/pokedex/internal/config"
	"github.com/skybi/pokedex/internal/storage"
	"github.com/skybi/pokedex/internal/task"
)

const sessionPurgeInterval = time.Minute

// Service represents the UI service including its session housekeeping
type Service struct {
	Config  *config.Config
	Storage storage.Driver

	ui        *ui.Service
	purgeTask *task.RepeatingTask
}

// Startup creates the session storage and starts up the UI service
func (service *Service) Startup(errs chan<- error) error {
	sessions, err := inmem.New()
	if err != nil {
		return err
	}

	// Schedule a task that terminates expired sessions
	service.purgeTask = task.NewRepeating(func() {
		n, err := sessions.TerminateExpired(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("could not terminate expired sessions")
		} else if n > 0 {
			log.Info().Int("amount", n).Msg("terminated expired sessions")
		}
	}, sessionPurgeInterval)
	service.purgeTask.Start()

	uiService := &ui.Service{
		Config:   service.Config,
		Storage:  service.Storage,
		Sessions: sessions,
	}
	service.ui = uiService
	go func() {
		if err := uiService.Startup(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	return nil
}

// Shutdown shuts down the UI service and stops the session housekeeping
func (service *Service) Shutdown() {
	if service.ui != nil {
		service.ui.Shutdown()
		service.ui = nil
	}
	if service.purgeTask != nil {
		service.purgeTask.Stop(false)
		service.purgeTask = nil
	}
}
