package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"relaybot/internal/infra"
)

// RelayService is the contract the transport layer consumes. The relay core
// returns structured results and classified errors; every user-facing string
// lives here.
type RelayService interface {
	ChatTurn(ctx context.Context, userID, text string) (string, error)
	OneShot(ctx context.Context, text string) (string, error)
	ClearHistory(userID string)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
	Models(ctx context.Context) ([]string, error)
}

// App is the handler container holding shared dependencies.
type App struct {
	Relay  RelayService
	Logger infra.Logger
}

// NewApp builds the handler container.
func NewApp(relay RelayService, logger infra.Logger) *App {
	return &App{Relay: relay, Logger: logger}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}
