// Package comfy relays image-generation jobs to a node-graph synthesis
// backend: it submits a workflow, correlates the asynchronous result through
// the backend's history ledger, and extracts the image bytes from whichever
// shape the ledger holds.
package comfy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"relaybot/internal/infra"
)

const defaultRequestTimeout = 30 * time.Second

// Options configures the synthesis backend client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the synthesis backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// JobHandle correlates a submitted job with its entry in the result ledger.
type JobHandle struct {
	PromptID string
}

type submitRequest struct {
	Prompt workflow `json:"prompt"`
}

type submitResponse struct {
	PromptID string `json:"prompt_id"`
}

type historyEntry struct {
	Outputs map[string]json.RawMessage `json:"outputs"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8188"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}
}

// Submit posts the workflow with the prompt substituted in and returns the
// handle used to poll the result ledger.
func (c *Client) Submit(ctx context.Context, prompt string) (JobHandle, error) {
	body, err := json.Marshal(submitRequest{Prompt: buildWorkflow(prompt)})
	if err != nil {
		return JobHandle{}, fmt.Errorf("comfy: encode workflow: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/prompt", bytes.NewReader(body))
	if err != nil {
		return JobHandle{}, fmt.Errorf("comfy: build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return JobHandle{}, ctx.Err()
		}
		return JobHandle{}, fmt.Errorf("%w: submit: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return JobHandle{}, fmt.Errorf("%w: status %d: %s", ErrBackendRejected, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var decoded submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return JobHandle{}, fmt.Errorf("%w: decode submit response: %v", ErrBackendRejected, err)
	}
	if decoded.PromptID == "" {
		return JobHandle{}, fmt.Errorf("%w: missing prompt_id", ErrBackendRejected)
	}
	return JobHandle{PromptID: decoded.PromptID}, nil
}

// fetchResult reads the ledger once. ready is false while the entry for the
// handle is absent or its outputs do not yet contain the output node; the
// ledger entry and its outputs need not appear atomically. Non-success
// statuses also count as not ready, matching the backend's behavior while a
// job is still queued.
func (c *Client) fetchResult(ctx context.Context, promptID string) (payload Payload, ready bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history/"+url.PathEscape(promptID), nil)
	if err != nil {
		return Payload{}, false, fmt.Errorf("comfy: build history request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Payload{}, false, ctx.Err()
		}
		return Payload{}, false, fmt.Errorf("%w: history: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Payload{}, false, nil
	}
	var ledger map[string]historyEntry
	if err := json.NewDecoder(resp.Body).Decode(&ledger); err != nil {
		c.logger.Warn().Err(err).Str("prompt_id", promptID).Msg("comfy: undecodable history response")
		return Payload{}, false, nil
	}
	entry, ok := ledger[promptID]
	if !ok {
		return Payload{}, false, nil
	}
	raw, ok := entry.Outputs[OutputNodeID]
	if !ok {
		return Payload{}, false, nil
	}
	return decodePayload(raw), true, nil
}

// fetchView retrieves the raw bytes for a server-side file reference.
func (c *Client) fetchView(ctx context.Context, filename, subfolder string) ([]byte, error) {
	query := url.Values{}
	query.Set("filename", filename)
	query.Set("subfolder", subfolder)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/view?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("comfy: build view request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: view: %v", ErrRetrievalFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: view status %d", ErrRetrievalFailed, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read view body: %v", ErrRetrievalFailed, err)
	}
	return data, nil
}
