package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"relaybot/internal/infra"
	"relaybot/internal/providers/comfy"
)

type stubRelay struct {
	chatResponse string
	chatErr      error
	imageData    []byte
	imageErr     error
	models       []string
	modelsErr    error
	clearedID    string
}

func (s *stubRelay) ChatTurn(_ context.Context, userID, text string) (string, error) {
	return s.chatResponse, s.chatErr
}

func (s *stubRelay) OneShot(_ context.Context, text string) (string, error) {
	return s.chatResponse, s.chatErr
}

func (s *stubRelay) ClearHistory(userID string) {
	s.clearedID = userID
}

func (s *stubRelay) GenerateImage(_ context.Context, prompt string) ([]byte, error) {
	return s.imageData, s.imageErr
}

func (s *stubRelay) Models(context.Context) ([]string, error) {
	return s.models, s.modelsErr
}

func newTestApp(relay *stubRelay) *App {
	discard := zerolog.New(io.Discard)
	return NewApp(relay, infra.Logger(discard))
}

func decodeError(t *testing.T, body io.Reader) errorBody {
	t.Helper()
	var decoded map[string]errorBody
	if err := json.NewDecoder(body).Decode(&decoded); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return decoded["error"]
}

func TestChatReturnsResponse(t *testing.T) {
	app := newTestApp(&stubRelay{chatResponse: "hello!"})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"user_id": "u1", "message": "hi"}`))
	rec := httptest.NewRecorder()
	app.Chat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var decoded chatResponse
	if err := json.NewDecoder(rec.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.Response != "hello!" {
		t.Fatalf("response = %q", decoded.Response)
	}
}

func TestChatRequiresUserID(t *testing.T) {
	app := newTestApp(&stubRelay{})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message": "hi"}`))
	rec := httptest.NewRecorder()
	app.Chat(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChatFailureUsesGenericMessage(t *testing.T) {
	app := newTestApp(&stubRelay{chatErr: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"user_id": "u1", "message": "hi"}`))
	rec := httptest.NewRecorder()
	app.Chat(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	body := decodeError(t, rec.Body)
	if body.Message != chatFailureMessage {
		t.Fatalf("message = %q, want the generic failure text", body.Message)
	}
	if strings.Contains(body.Message, "connection refused") {
		t.Fatalf("internal error leaked to caller: %q", body.Message)
	}
}

func TestMessageOneShot(t *testing.T) {
	app := newTestApp(&stubRelay{chatResponse: "once"})

	req := httptest.NewRequest(http.MethodPost, "/v1/message", strings.NewReader(`{"message": "hi"}`))
	rec := httptest.NewRecorder()
	app.Message(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestClearChat(t *testing.T) {
	relay := &stubRelay{}
	app := newTestApp(relay)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/clear", strings.NewReader(`{"user_id": "u1"}`))
	rec := httptest.NewRecorder()
	app.ClearChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if relay.clearedID != "u1" {
		t.Fatalf("cleared id = %q, want u1", relay.clearedID)
	}
}

func TestGenerateImageStreamsBytes(t *testing.T) {
	image := []byte{0x89, 'P', 'N', 'G'}
	app := newTestApp(&stubRelay{imageData: image})

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", strings.NewReader(`{"prompt": "a fox"}`))
	rec := httptest.NewRecorder()
	app.GenerateImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q, want image/png", ct)
	}
	if got := rec.Body.Bytes(); string(got) != string(image) {
		t.Fatalf("body = %v, want %v", got, image)
	}
}

func TestGenerateImageFailureUsesGenericMessage(t *testing.T) {
	app := newTestApp(&stubRelay{imageErr: comfy.ErrTimeout})

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", strings.NewReader(`{"prompt": "a fox"}`))
	rec := httptest.NewRecorder()
	app.GenerateImage(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	body := decodeError(t, rec.Body)
	if body.Message != imageFailureMessage {
		t.Fatalf("message = %q, want the generic failure text", body.Message)
	}
}

func TestGenerateImageRequiresPrompt(t *testing.T) {
	app := newTestApp(&stubRelay{})

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	app.GenerateImage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestModels(t *testing.T) {
	app := newTestApp(&stubRelay{models: []string{"llama3.1", "mistral:7b"}})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rec := httptest.NewRecorder()
	app.Models(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var decoded map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(decoded["models"]) != 2 {
		t.Fatalf("models = %#v", decoded)
	}
}
