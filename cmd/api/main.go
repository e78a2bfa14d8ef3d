package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"relaybot/internal/conversation"
	"relaybot/internal/http/handlers"
	"relaybot/internal/http/httpapi"
	"relaybot/internal/infra"
	"relaybot/internal/providers/comfy"
	"relaybot/internal/providers/ollama"
	"relaybot/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	httpClient := &http.Client{Timeout: 120 * time.Second}

	ollamaClient := ollama.NewClient(ollama.Options{
		BaseURL:    cfg.OllamaBaseURL,
		Model:      cfg.OllamaModel,
		HTTPClient: httpClient,
		Logger:     &logger,
	})
	comfyClient := comfy.NewClient(comfy.Options{
		BaseURL:    cfg.ComfyBaseURL,
		HTTPClient: httpClient,
		Logger:     &logger,
	})
	pipeline := comfy.NewPipeline(comfyClient, comfy.PipelineOptions{
		PollInterval: cfg.ComfyPollEvery,
		PollBudget:   cfg.ComfyPollBudget,
		Logger:       &logger,
	})

	store := conversation.NewStore()
	relay := service.NewRelay(store, ollamaClient, pipeline, &logger)

	app := handlers.NewApp(relay, logger)
	router := httpapi.NewRouter(app, cfg, logger)

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
