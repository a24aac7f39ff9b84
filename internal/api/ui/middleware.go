package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/skybi/pokedex/internal/api/ui/session"
	"github.com/skybi/pokedex/internal/listsync"
)

const sessionCookieName = "pokedex_session"

type contextKey int

const contextKeySession contextKey = iota

func middlewareLogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)
		next.ServeHTTP(wrapped, request)
		log.Debug().
			Str("method", request.Method).
			Str("path", request.URL.Path).
			Int("status", wrapped.Status()).
			Dur("duration", time.Since(start)).
			Msg("handled request")
	})
}

// MiddlewareSession resolves the session of the caller or creates a new one and injects it into the request context.
// New sessions load their first page before the request is handled any further.
func (service *Service) MiddlewareSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		expires := time.Now().Add(service.Config.SessionLifetime)

		var ses *session.Session
		if cookie, err := request.Cookie(sessionCookieName); err == nil {
			ses, err = service.Sessions.Get(request.Context(), cookie.Value)
			if err != nil {
				service.writer.WriteInternalError(writer, err)
				return
			}
		}

		if ses == nil {
			id := uuid.NewString()
			logger := log.With().Str("session", id).Logger()
			ses = &session.Session{
				ID:         id,
				Controller: listsync.New(service.Storage.Pokemon(), logger),
				Expires:    expires.Unix(),
			}
			if err := service.Sessions.Create(request.Context(), ses); err != nil {
				service.writer.WriteInternalError(writer, err)
				return
			}
			logger.Debug().Msg("created session")

			// A failed initial load is reflected by the notice of the session state
			if err := ses.Controller.Mount(request.Context()); err != nil {
				logger.Warn().Err(err).Msg("could not load the first page of a new session")
			}
		} else if err := service.Sessions.Touch(request.Context(), ses.ID, expires.Unix()); err != nil {
			service.writer.WriteInternalError(writer, err)
			return
		}

		http.SetCookie(writer, &http.Cookie{
			Name:     sessionCookieName,
			Value:    ses.ID,
			Path:     "/",
			Expires:  expires,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(writer, request.WithContext(context.WithValue(request.Context(), contextKeySession, ses)))
	})
}

func sessionFromContext(ctx context.Context) *session.Session {
	return ctx.Value(contextKeySession).(*session.Session)
}
