// Package client is an HTTP client for the hwpolicy API, used by the CLI and
// by other services embedding policy checks.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is an HTTP client for the hwpolicy API
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PolicyMeta describes the active policy set.
type PolicyMeta struct {
	FormatVersion         string `json:"formatVersion"`
	NumRules              int    `json:"numRules"`
	MaxRuleID             uint32 `json:"maxRuleId"`
	ContainsUnknownFields bool   `json:"containsUnknownFields"`
	ETag                  string `json:"etag"`
	LoadedAt              string `json:"loadedAt"`
}

// PushResult is the server's acknowledgement of a policy push.
type PushResult struct {
	OK                    bool   `json:"ok"`
	ETag                  string `json:"etag"`
	NumRules              int    `json:"numRules"`
	MaxRuleID             uint32 `json:"maxRuleId"`
	ContainsUnknownFields bool   `json:"containsUnknownFields"`
}

// Platform overrides the server host's OS during evaluation.
type Platform struct {
	Os        string `json:"os"`
	OsVersion string `json:"osVersion,omitempty"`
}

// Hardware describes the GPU under evaluation. PCI ids are hex strings.
type Hardware struct {
	VendorID      string  `json:"vendorId,omitempty"`
	DeviceID      string  `json:"deviceId,omitempty"`
	DriverVendor  string  `json:"driverVendor,omitempty"`
	DriverVersion string  `json:"driverVersion,omitempty"`
	DriverDate    string  `json:"driverDate,omitempty"`
	GLVendor      string  `json:"glVendor,omitempty"`
	GLRenderer    string  `json:"glRenderer,omitempty"`
	Optimus       bool    `json:"optimus,omitempty"`
	AmdSwitchable bool    `json:"amdSwitchable,omitempty"`
	PerfGraphics  float32 `json:"perfGraphics,omitempty"`
	PerfGaming    float32 `json:"perfGaming,omitempty"`
	PerfOverall   float32 `json:"perfOverall,omitempty"`
}

// EvaluateRequest is the body of POST /v1/evaluate.
type EvaluateRequest struct {
	Platform *Platform `json:"platform,omitempty"`
	Hardware Hardware  `json:"hardware"`
}

// Problem is one reported reason a feature was disabled.
type Problem struct {
	ID          uint32 `json:"id"`
	Description string `json:"description"`
	CrBugs      []int  `json:"crBugs,omitempty"`
	WebkitBugs  []int  `json:"webkitBugs,omitempty"`
}

// EvaluateResult is the decision for one hardware description.
type EvaluateResult struct {
	EvaluationID string    `json:"evaluationId"`
	Features     []string  `json:"features"`
	ActiveIDs    []uint32  `json:"activeIds"`
	Problems     []Problem `json:"problems"`
	ETag         string    `json:"etag"`
	EvaluatedAt  string    `json:"evaluatedAt"`
}

// GetPolicy retrieves metadata about the active policy set
func (c *Client) GetPolicy(ctx context.Context) (*PolicyMeta, error) {
	var meta PolicyMeta
	if err := c.getJSON(ctx, "/v1/policy", &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// GetDocument retrieves the raw active policy document
func (c *Client) GetDocument(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/v1/policy/document", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// PushPolicy uploads a new policy document
func (c *Client) PushPolicy(ctx context.Context, raw []byte) (*PushResult, error) {
	req, err := http.NewRequestWithContext(ctx, "PUT", c.BaseURL+"/v1/policy", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result PushResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// Evaluate submits a hardware description for evaluation
func (c *Client) Evaluate(ctx context.Context, evalReq EvaluateRequest) (*EvaluateResult, error) {
	body, err := json.Marshal(evalReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/evaluate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result EvaluateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
