// internal/repair/client.go
package repair

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpclient "driftaway/internal/common/http"
	"driftaway/internal/common/metrics"
)

// ErrRepairUnavailable covers every way the repair service can fail to help.
var ErrRepairUnavailable = errors.New("REPAIR_UNAVAILABLE")

// DefaultTimeout bounds a single repair call.
const DefaultTimeout = 5 * time.Second

// Repairer turns malformed model text into JSON.
type Repairer interface {
	Repair(ctx context.Context, text string) (json.RawMessage, error)
}

type Config struct {
	URL     string
	Timeout time.Duration
}

// Client calls the snip-smart JSON cleaning service:
// POST <url> {"text": raw} -> 200 {"data": <json>, "meta": {...}}.
type Client struct {
	config *Config
	client *httpclient.Client
}

func NewClient(cfg *Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout),
	}
}

func (c *Client) Repair(ctx context.Context, text string) (json.RawMessage, error) {
	out, err := c.repair(ctx, text)
	if err != nil {
		metrics.RepairAttempts.WithLabelValues("unavailable").Inc()
		return nil, err
	}
	metrics.RepairAttempts.WithLabelValues("repaired").Inc()
	return out, nil
}

func (c *Client) repair(ctx context.Context, text string) (json.RawMessage, error) {
	if c.config.URL == "" {
		return nil, fmt.Errorf("%w: no repair url configured", ErrRepairUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.client.PostJSON(ctx, c.config.URL, map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepairUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRepairUnavailable, resp.StatusCode)
	}

	payload, err := unwrap(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepairUnavailable, err)
	}
	return payload, nil
}

// unwrap extracts the cleaned document from a repair response. A body with a
// "data" member is an envelope; anything else is taken as the document. A
// data string holding JSON is decoded once more.
func unwrap(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, errors.New("malformed response body")
	}

	payload := json.RawMessage(body)
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		if data, ok := envelope["data"]; ok {
			payload = data
		}
	}

	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		if !json.Valid([]byte(s)) {
			return nil, errors.New("data is not JSON")
		}
		payload = json.RawMessage(s)
	}

	if isEmpty(payload) {
		return nil, errors.New("empty document")
	}
	return payload, nil
}

func isEmpty(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "{}", "[]", `""`:
		return true
	}
	return false
}
