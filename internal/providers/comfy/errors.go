package comfy

import (
	"context"
	"errors"
)

// Classified failures for the image job pipeline. Callers surface a single
// generic message to users; the distinct kinds stay available for logs.
var (
	// ErrBackendUnavailable indicates a transport-level failure talking to the
	// synthesis backend (connection refused, DNS, per-call timeout).
	ErrBackendUnavailable = errors.New("comfy: backend unavailable")

	// ErrBackendRejected indicates the backend answered a submission with a
	// non-success status.
	ErrBackendRejected = errors.New("comfy: submission rejected")

	// ErrTimeout indicates the polling budget elapsed before the result
	// ledger produced an output for the job.
	ErrTimeout = errors.New("comfy: timed out waiting for result")

	// ErrMalformedPayload indicates the ledger held an output for the job but
	// not in any recognized shape.
	ErrMalformedPayload = errors.New("comfy: malformed result payload")

	// ErrRetrievalFailed indicates the follow-up fetch for a server-side file
	// reference did not return the image bytes.
	ErrRetrievalFailed = errors.New("comfy: image retrieval failed")
)

// FailureKind is a stable label for telemetry and structured logs.
type FailureKind string

const (
	FailureBackendUnavailable FailureKind = "backend_unavailable"
	FailureBackendRejected    FailureKind = "backend_rejected"
	FailureTimeout            FailureKind = "timeout"
	FailureMalformedPayload   FailureKind = "malformed_payload"
	FailureRetrievalFailed    FailureKind = "retrieval_failed"
	FailureCanceled           FailureKind = "canceled"
	FailureUnknown            FailureKind = "unknown"
)

// KindOf maps an error returned by the pipeline to its failure kind.
func KindOf(err error) FailureKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBackendUnavailable):
		return FailureBackendUnavailable
	case errors.Is(err, ErrBackendRejected):
		return FailureBackendRejected
	case errors.Is(err, ErrTimeout):
		return FailureTimeout
	case errors.Is(err, ErrMalformedPayload):
		return FailureMalformedPayload
	case errors.Is(err, ErrRetrievalFailed):
		return FailureRetrievalFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	default:
		return FailureUnknown
	}
}
