package ui

import (
	"errors"
	"math"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/skybi/pokedex/internal/api/schema"
	"github.com/skybi/pokedex/internal/api/validation"
	"github.com/skybi/pokedex/internal/listsync"
	"github.com/skybi/pokedex/internal/pokemon"
)

// stateResponse represents the list view state as it is sent to the browser
type stateResponse struct {
	*schema.PaginatedResponse[*pokemon.Pokemon]
	Loading bool   `json:"loading"`
	Notice  string `json:"notice,omitempty"`
}

func buildStateResponse(state listsync.State) *stateResponse {
	return &stateResponse{
		PaginatedResponse: schema.BuildPaginatedResponse(state.CurrentPage, state.PageSize, state.PageCount, state.TotalCount, state.Items),
		Loading:           state.Loading,
		Notice:            state.Notice,
	}
}

// writeResult writes the state of controller if err is nil and the matching error response otherwise
func (service *Service) writeResult(writer http.ResponseWriter, controller *listsync.Controller, err error) {
	if err == nil {
		service.writer.WriteJSON(writer, buildStateResponse(controller.Snapshot()))
		return
	}

	var validationErr *pokemon.ValidationError
	switch {
	case errors.As(err, &validationErr):
		service.writer.WriteErrors(writer, http.StatusBadRequest, schema.ErrValidation(validationErr.Field, validationErr.Message))
	case pokemon.IsUpstream(err):
		log.Warn().Err(err).Msg("the pokemon service could not serve a request")
		service.writer.WriteErrors(writer, http.StatusBadGateway, schema.ErrUpstreamUnavailable(err.Error()))
	default:
		service.writer.WriteInternalError(writer, err)
	}
}

// EndpointGetState handles the 'GET /api/state' endpoint
func (service *Service) EndpointGetState(writer http.ResponseWriter, request *http.Request) {
	ses := sessionFromContext(request.Context())
	service.writeResult(writer, ses.Controller, nil)
}

// EndpointSetPage handles the 'PUT /api/page?number={number}' endpoint
func (service *Service) EndpointSetPage(writer http.ResponseWriter, request *http.Request) {
	number, validationErr := validation.QueryNumber(request, "number", true, 0, 1, math.MaxInt32)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	ses := sessionFromContext(request.Context())
	service.writeResult(writer, ses.Controller, ses.Controller.SetPage(request.Context(), int(number)))
}

// EndpointNextPage handles the 'POST /api/page/next' endpoint
func (service *Service) EndpointNextPage(writer http.ResponseWriter, request *http.Request) {
	ses := sessionFromContext(request.Context())
	service.writeResult(writer, ses.Controller, ses.Controller.NextPage(request.Context()))
}

// EndpointPrevPage handles the 'POST /api/page/prev' endpoint
func (service *Service) EndpointPrevPage(writer http.ResponseWriter, request *http.Request) {
	ses := sessionFromContext(request.Context())
	service.writeResult(writer, ses.Controller, ses.Controller.PrevPage(request.Context()))
}

// EndpointReload handles the 'POST /api/reload' endpoint
func (service *Service) EndpointReload(writer http.ResponseWriter, request *http.Request) {
	ses := sessionFromContext(request.Context())
	service.writeResult(writer, ses.Controller, ses.Controller.Reload(request.Context()))
}

type endpointAddPokemonRequestPayload struct {
	ID   *int64  `json:"id" required:"true" min:"1"`
	Name *string `json:"name" required:"true"`
}

// EndpointAddPokemon handles the 'POST /api/pokemon' endpoint
func (service *Service) EndpointAddPokemon(writer http.ResponseWriter, request *http.Request) {
	payload, validationErrs, err := validation.UnmarshalBody[endpointAddPokemonRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	ses := sessionFromContext(request.Context())
	err = ses.Controller.AddRecord(request.Context(), *payload.ID, *payload.Name)
	if err != nil {
		service.writeResult(writer, ses.Controller, err)
		return
	}
	service.writer.WriteJSONCode(writer, http.StatusCreated, buildStateResponse(ses.Controller.Snapshot()))
}

// EndpointDeletePokemon handles the 'DELETE /api/pokemon/{id}' endpoint
func (service *Service) EndpointDeletePokemon(writer http.ResponseWriter, request *http.Request) {
	id, validationErr := validation.URLNumber(request, "id", 1, math.MaxInt64)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	ses := sessionFromContext(request.Context())
	service.writeResult(writer, ses.Controller, ses.Controller.DeleteRecord(request.Context(), id))
}
