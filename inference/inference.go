package inference

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// analyzePath is the sub-path the remote backend serves inference on.
// The health probe targets the service root instead.
const analyzePath = "/analyze"

type analyzeRequest struct {
	Image string `json:"image"`
}

type analyzeResponse struct {
	Status string `json:"status"`
	Report string `json:"report"`
	Error  string `json:"error"`
}

// Client talks to the remote GPU inference backend (a Colab-hosted
// HTTP service reachable through a tunnel URL).
type Client struct {
	http  *http.Client
	probe *http.Client
}

// NewClient creates an inference client. The analyze timeout should be
// generous: inference runs on a remote GPU with cold starts, 30-60s
// responses are normal.
func NewClient(analyzeTimeout, probeTimeout time.Duration) *Client {
	return &Client{
		http:  &http.Client{Timeout: analyzeTimeout},
		probe: &http.Client{Timeout: probeTimeout},
	}
}

// HealthURL derives the health-check URL from an inference endpoint by
// replacing the analyze sub-path with the service root.
func HealthURL(endpoint string) string {
	return strings.ReplaceAll(endpoint, analyzePath, "/")
}

// Probe reports whether the backend behind the endpoint is reachable.
// Any network failure maps to false; Probe never returns an error and
// never retries.
func (c *Client) Probe(endpoint string) bool {
	resp, err := c.probe.Get(HealthURL(endpoint))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Analyze sends a base64-encoded PNG to the backend and returns the
// generated medical report text. Backend-reported failures surface with
// the backend's own error message.
func (c *Client) Analyze(endpoint, imageBase64 string) (string, error) {
	reqBody := analyzeRequest{Image: imageBase64}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var result analyzeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response (status %d): %s", resp.StatusCode, string(body))
	}

	if result.Status != "success" {
		if result.Error != "" {
			return "", errors.New(result.Error)
		}
		return "", errors.New("Unknown error")
	}

	return result.Report, nil
}
