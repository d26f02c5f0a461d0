package tokenizerapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// usernameHeader is the console-mode stand-in for the API Gateway
// authorizer: local development supplies the identity directly.
const usernameHeader = "X-Username"

// Routes exposes the same resource paths as the lambda surface on a chi
// router, for console mode.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	for key, action := range resourceRoutes {
		r.Method(key.Method, key.Resource, h.httpAction(action))
	}
	return r
}

func (h *Handler) httpAction(action Action) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		params := map[string]string{}
		query := req.URL.Query()
		for name := range query {
			params[name] = query.Get(name)
		}

		resp := h.Dispatch(req.Context(), Request{
			RequesterID:   req.Header.Get(usernameHeader),
			Action:        action,
			Params:        params,
			CorrelationID: uuid.NewString(),
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.Logger.Error().Err(err).Msg("failed to encode response")
		}
	}
}
