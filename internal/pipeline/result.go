// internal/pipeline/result.go
package pipeline

import (
	"encoding/json"
)

type Status string

const (
	StatusSuccess  Status = "success"
	StatusFallback Status = "fallback"
	StatusError    Status = "error"
)

// Result is the outcome of one provider run. Exactly one of the three
// shapes is produced per run:
//
//	success:  Payload holds validated model output
//	fallback: Payload holds the provider's mock, Reason says why
//	error:    Message says why nothing usable was produced
type Result struct {
	Provider string          `json:"provider"`
	Status   Status          `json:"status"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Message  string          `json:"error,omitempty"`
}

func Success(provider string, payload json.RawMessage) Result {
	return Result{Provider: provider, Status: StatusSuccess, Payload: payload}
}

func Fallback(provider string, payload json.RawMessage, reason string) Result {
	return Result{Provider: provider, Status: StatusFallback, Payload: payload, Reason: reason}
}

func Failure(provider string, err error) Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Result{Provider: provider, Status: StatusError, Message: msg}
}

// Usable reports whether the result carries a payload a caller can render.
// Success and fallback results are usable and cacheable; errors are neither.
func (r Result) Usable() bool {
	return r.Status == StatusSuccess || r.Status == StatusFallback
}
