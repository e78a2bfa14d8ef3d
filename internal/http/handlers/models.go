package handlers

import "net/http"

// Models lists the models available on the inference endpoint.
func (a *App) Models(w http.ResponseWriter, r *http.Request) {
	models, err := a.Relay.Models(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: model listing failed")
		a.error(w, http.StatusBadGateway, "models_failed", "failed to fetch model list")
		return
	}
	a.json(w, http.StatusOK, map[string][]string{"models": models})
}
