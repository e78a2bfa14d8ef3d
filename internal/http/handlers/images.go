package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"relaybot/internal/providers/comfy"
)

const imageFailureMessage = "Sorry, I couldn't generate an image at this time."

type imageRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateImage relays the prompt to the synthesis pipeline and streams the
// resulting image back. Every failure kind collapses to one generic message
// for the caller while the classified kind is logged.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}
	data, err := a.Relay.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		a.Logger.Error().
			Err(err).
			Str("kind", string(comfy.KindOf(err))).
			Msg("handlers: image generation failed")
		a.error(w, http.StatusBadGateway, "image_failed", imageFailureMessage)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="generated_image.png"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
