package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Every inference failure surfaces as this single message; the underlying
// error stays in the logs.
const chatFailureMessage = "Sorry, I couldn't generate a response at this time."

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat handles a conversation turn with memory for the given user identity.
func (a *App) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user_id required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "message required")
		return
	}
	response, err := a.Relay.ChatTurn(r.Context(), req.UserID, req.Message)
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", req.UserID).Msg("handlers: chat turn failed")
		a.error(w, http.StatusBadGateway, "inference_failed", chatFailureMessage)
		return
	}
	a.json(w, http.StatusOK, chatResponse{Response: response})
}

// Message handles a one-time exchange without conversation memory.
func (a *App) Message(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "message required")
		return
	}
	response, err := a.Relay.OneShot(r.Context(), req.Message)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: one-shot failed")
		a.error(w, http.StatusBadGateway, "inference_failed", chatFailureMessage)
		return
	}
	a.json(w, http.StatusOK, chatResponse{Response: response})
}

// ClearChat erases the user's conversation history.
func (a *App) ClearChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user_id required")
		return
	}
	a.Relay.ClearHistory(req.UserID)
	a.json(w, http.StatusOK, map[string]string{"status": "cleared"})
}
