package comfy

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"relaybot/internal/infra"
)

const (
	defaultPollInterval = time.Second
	defaultPollBudget   = 120 * time.Second
)

// PipelineOptions configures the job pipeline around a backend client.
type PipelineOptions struct {
	PollInterval time.Duration
	PollBudget   time.Duration
	Logger       *infra.Logger
}

// Pipeline drives one image job end to end: submit, poll the result ledger
// until the output node appears, extract the bytes. It holds no per-job
// state, so concurrent Generate calls need no coordination.
type Pipeline struct {
	client       *Client
	pollInterval time.Duration
	pollBudget   time.Duration
	logger       *infra.Logger
}

// NewPipeline wires a pipeline with sane defaults.
func NewPipeline(client *Client, opts PipelineOptions) *Pipeline {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	budget := opts.PollBudget
	if budget <= 0 {
		budget = defaultPollBudget
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Pipeline{client: client, pollInterval: interval, pollBudget: budget, logger: logger}
}

// AwaitResult polls the result ledger for the handle until the output node's
// payload appears, a transport failure occurs, the poll budget elapses, or
// the context is canceled. Between probes it waits one poll interval; it
// never busy-spins and it stops promptly when the caller goes away.
func (p *Pipeline) AwaitResult(ctx context.Context, handle JobHandle) (Payload, error) {
	budget := time.NewTimer(p.pollBudget)
	defer budget.Stop()
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		payload, ready, err := p.client.fetchResult(ctx, handle.PromptID)
		if err != nil {
			return Payload{}, err
		}
		if ready {
			return payload, nil
		}

		select {
		case <-ctx.Done():
			return Payload{}, ctx.Err()
		case <-budget.C:
			return Payload{}, fmt.Errorf("%w: no result after %s", ErrTimeout, p.pollBudget)
		case <-ticker.C:
		}
	}
}

// ExtractBytes turns a ledger payload into raw image bytes.
func (p *Pipeline) ExtractBytes(ctx context.Context, payload Payload) ([]byte, error) {
	switch payload.Kind {
	case PayloadInlineBase64:
		encoded := payload.Inline
		// A data-URI header ends at the first comma; bare base64 has none.
		if _, after, found := strings.Cut(encoded, ","); found {
			encoded = after
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: decode base64: %v", ErrMalformedPayload, err)
		}
		return data, nil
	case PayloadFileReference:
		return p.client.fetchView(ctx, payload.Filename, payload.Subfolder)
	default:
		return nil, fmt.Errorf("%w: unrecognized output shape", ErrMalformedPayload)
	}
}

// Generate runs the composed job: submit, await, extract. The first failure
// wins and is logged with its classified kind before being returned.
func (p *Pipeline) Generate(ctx context.Context, prompt string) ([]byte, error) {
	handle, err := p.client.Submit(ctx, prompt)
	if err != nil {
		return nil, p.fail("submit", JobHandle{}, err)
	}
	p.logger.Info().Str("prompt_id", handle.PromptID).Msg("comfy: submitted job")

	payload, err := p.AwaitResult(ctx, handle)
	if err != nil {
		return nil, p.fail("poll", handle, err)
	}
	p.logger.Debug().
		Str("prompt_id", handle.PromptID).
		Str("payload_kind", string(payload.Kind)).
		Msg("comfy: job ready")

	data, err := p.ExtractBytes(ctx, payload)
	if err != nil {
		return nil, p.fail("extract", handle, err)
	}
	p.logger.Info().
		Str("prompt_id", handle.PromptID).
		Int("bytes", len(data)).
		Msg("comfy: image extracted")
	return data, nil
}

func (p *Pipeline) fail(stage string, handle JobHandle, err error) error {
	evt := p.logger.Error().
		Str("stage", stage).
		Str("kind", string(KindOf(err))).
		Err(err)
	if handle.PromptID != "" {
		evt = evt.Str("prompt_id", handle.PromptID)
	}
	evt.Msg("comfy: image job failed")
	return err
}
