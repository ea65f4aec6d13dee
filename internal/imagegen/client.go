// SPDX-License-Identifier: EPL-2.0

// Package imagegen calls a DeepAI-compatible text-to-image API.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrEmptyPrompt   = errors.New("imagegen: text input is required")
	ErrNotConfigured = errors.New("imagegen: no API key configured")
	ErrUpstream      = errors.New("imagegen: upstream error")
)

// maxResponseBytes bounds how much of an upstream reply is read.
const maxResponseBytes = 1 << 20

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient returns a client for endpoint. An empty apiKey leaves the client
// usable but every Generate call fails with ErrNotConfigured.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	Text string `json:"text"`
}

type generateResponse struct {
	ID        string `json:"id"`
	OutputURL string `json:"output_url"`
	Error     string `json:"error"`
	Err       string `json:"err"`
}

// Generate submits text and returns the URL of the rendered image.
func (c *Client) Generate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyPrompt
	}
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(generateRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("imagegen: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("imagegen: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrUpstream, err)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: status %d, undecodable body", ErrUpstream, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK || out.OutputURL == "" {
		msg := out.Error
		if msg == "" {
			msg = out.Err
		}
		if msg == "" {
			msg = "failed to generate image"
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, msg)
	}

	return out.OutputURL, nil
}
