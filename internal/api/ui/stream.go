package ui

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const streamWriteTimeout = 10 * time.Second

func (service *Service) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(request *http.Request) bool {
			origin := request.Header.Get("Origin")
			return origin == "" || service.Config.AllowedOrigin == "*" || origin == service.Config.AllowedOrigin
		},
	}
}

// EndpointStream handles the 'GET /api/ws' endpoint.
// The current state is sent right after the upgrade and again after every change. Messages sent by the client are
// ignored.
func (service *Service) EndpointStream(writer http.ResponseWriter, request *http.Request) {
	ses := sessionFromContext(request.Context())
	logger := log.With().Str("session", ses.ID).Logger()

	conn, err := service.upgrader().Upgrade(writer, request, nil)
	if err != nil {
		logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	changes, unsubscribe := ses.Controller.Subscribe()
	defer unsubscribe()

	// Wait for client disconnect
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	logger.Debug().Msg("websocket client connected")
	defer logger.Debug().Msg("websocket client disconnected")

	send := func() error {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		return conn.WriteJSON(buildStateResponse(ses.Controller.Snapshot()))
	}
	if err := send(); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-changes:
			if err := send(); err != nil {
				return
			}
		}
	}
}
