// internal/model/http.go
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	httpclient "driftaway/internal/common/http"
)

type HTTPConfig struct {
	BaseURL     string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// HTTPGenerator calls a self-hosted GenAI gateway exposing
// POST /api/ai/generate {"prompt", "max_tokens", "temperature"} -> {"text"}.
type HTTPGenerator struct {
	config *HTTPConfig
	client *httpclient.Client
}

func NewHTTPGenerator(cfg *HTTPConfig) *HTTPGenerator {
	return &HTTPGenerator{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout),
	}
}

func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"prompt":      prompt,
		"max_tokens":  g.config.MaxTokens,
		"temperature": g.config.Temperature,
	}
	if g.config.APIKey != "" {
		requestBody["api_key"] = g.config.APIKey
	}

	url := strings.TrimRight(g.config.BaseURL, "/") + "/api/ai/generate"
	resp, err := g.client.PostJSON(ctx, url, requestBody)
	if err != nil {
		if cerr := classify(ctx, err); cerr == ErrModelTimeout || isClientTimeout(err) {
			return "", ErrModelTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrModelFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrModelFailed, resp.StatusCode)
	}

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(resp.Body, &apiResponse); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrModelFailed, err)
	}

	if strings.TrimSpace(apiResponse.Text) == "" {
		return "", ErrEmptyResponse
	}
	return apiResponse.Text, nil
}

func isClientTimeout(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Client.Timeout") || strings.Contains(msg, "deadline exceeded")
}
