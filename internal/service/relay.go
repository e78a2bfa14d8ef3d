// Package service composes the conversation store, the inference client and
// the image pipeline into the contract the transport layer calls.
package service

import (
	"context"
	"fmt"

	"relaybot/internal/conversation"
	"relaybot/internal/infra"
)

type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

type imagePipeline interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Relay implements the dispatcher-facing operations. It returns structured
// results and classified errors only; user-facing wording belongs to the
// transport layer.
type Relay struct {
	store  *conversation.Store
	text   textGenerator
	images imagePipeline
	logger *infra.Logger
}

// NewRelay wires the relay with its collaborators.
func NewRelay(store *conversation.Store, text textGenerator, images imagePipeline, logger *infra.Logger) *Relay {
	return &Relay{store: store, text: text, images: images, logger: logger}
}

// ChatTurn runs one grounded exchange: the user's message joins the identity's
// history, the full history becomes the prompt, and the model's answer is
// appended on the response path. Appending the answer after the call is safe
// even when other turns for the same identity landed in between; the store
// serializes per-identity updates.
func (r *Relay) ChatTurn(ctx context.Context, userID, text string) (string, error) {
	r.store.Append(userID, conversation.SpeakerUser, text)
	prompt := conversation.Render(r.store.Get(userID))

	response, err := r.text.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat turn: %w", err)
	}

	r.store.Append(userID, conversation.SpeakerAssistant, response)
	return response, nil
}

// OneShot answers a single message without touching any history.
func (r *Relay) OneShot(ctx context.Context, text string) (string, error) {
	response, err := r.text.Generate(ctx, text)
	if err != nil {
		return "", fmt.Errorf("one-shot: %w", err)
	}
	return response, nil
}

// ClearHistory resets the identity's conversation. Idempotent.
func (r *Relay) ClearHistory(userID string) {
	r.store.Clear(userID)
	r.logger.Debug().Str("user_id", userID).Msg("relay: history cleared")
}

// GenerateImage relays the prompt to the image pipeline and returns the raw
// bytes. Failures come back classified; see the comfy package taxonomy.
func (r *Relay) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return r.images.Generate(ctx, prompt)
}

// Models lists the models installed on the inference endpoint.
func (r *Relay) Models(ctx context.Context) ([]string, error) {
	return r.text.ListModels(ctx)
}
