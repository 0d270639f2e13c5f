package dietsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls an external diet classification service over HTTP.
// BaseURL points at the service root; the classify endpoint is
// POST {BaseURL}/v1/classify.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

type classifyRequest struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

type classifyResponse struct {
	Diet       string  `json:"diet"`
	Confidence float64 `json:"confidence"`
}

func (c *Client) Classify(ctx context.Context, name string, ingredients []string) (Classification, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return Classification{}, fmt.Errorf("diet service base URL is empty")
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	payload, err := json.Marshal(classifyRequest{Name: name, Ingredients: ingredients})
	if err != nil {
		return Classification{}, fmt.Errorf("encode classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/classify", bytes.NewReader(payload))
	if err != nil {
		return Classification{}, fmt.Errorf("create classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("execute classify request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Classification{}, fmt.Errorf("read classify response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Classification{}, fmt.Errorf("classify request failed with status %d", resp.StatusCode)
	}

	var parsed classifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Classification{}, fmt.Errorf("decode classify response: %w", err)
	}
	if parsed.Diet == "" {
		return Classification{}, fmt.Errorf("classify response has no diet")
	}

	return Classification{Diet: parsed.Diet, Confidence: parsed.Confidence}, nil
}
