package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("OLLAMA_MODEL", "")
	t.Setenv("COMFYUI_BASE_URL", "")
	t.Setenv("COMFYUI_POLL_INTERVAL_MS", "")
	t.Setenv("COMFYUI_POLL_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.OllamaBaseURL != "http://localhost:11434" {
		t.Fatalf("OllamaBaseURL = %q", cfg.OllamaBaseURL)
	}
	if cfg.OllamaModel != "llama3.1" {
		t.Fatalf("OllamaModel = %q", cfg.OllamaModel)
	}
	if cfg.ComfyBaseURL != "http://127.0.0.1:8188" {
		t.Fatalf("ComfyBaseURL = %q", cfg.ComfyBaseURL)
	}
	if cfg.ComfyPollEvery != time.Second {
		t.Fatalf("ComfyPollEvery = %s, want 1s", cfg.ComfyPollEvery)
	}
	if cfg.ComfyPollBudget != 120*time.Second {
		t.Fatalf("ComfyPollBudget = %s, want 120s", cfg.ComfyPollBudget)
	}
}

func TestLoadConfigHonorsOverrides(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "mistral:7b")
	t.Setenv("COMFYUI_POLL_INTERVAL_MS", "250")
	t.Setenv("COMFYUI_POLL_TIMEOUT_SECONDS", "30")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.OllamaModel != "mistral:7b" {
		t.Fatalf("OllamaModel = %q", cfg.OllamaModel)
	}
	if cfg.ComfyPollEvery != 250*time.Millisecond {
		t.Fatalf("ComfyPollEvery = %s, want 250ms", cfg.ComfyPollEvery)
	}
	if cfg.ComfyPollBudget != 30*time.Second {
		t.Fatalf("ComfyPollBudget = %s, want 30s", cfg.ComfyPollBudget)
	}
}

func TestLoadConfigIgnoresUnparsableInt(t *testing.T) {
	t.Setenv("COMFYUI_POLL_INTERVAL_MS", "soon")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ComfyPollEvery != time.Second {
		t.Fatalf("ComfyPollEvery = %s, want the 1s default", cfg.ComfyPollEvery)
	}
}
