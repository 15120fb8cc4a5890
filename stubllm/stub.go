package stubllm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Client is a deterministic, no-network LLM stub intended for CI and
// local end-to-end tests. Its audit reply follows the four-line format
// the parser expects so downstream parsing exercises the full pipeline.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

func (c *Client) Translate(medicalReport string) (string, error) {
	sum := sha256.Sum256([]byte(medicalReport))
	short := hex.EncodeToString(sum[:8])
	return fmt.Sprintf("In plain language (%s): %s", short, truncate(medicalReport, 200)), nil
}

func (c *Client) AuditConsistency(medicalReport, laymanReport string) (string, error) {
	// Score is deterministic per input pair so the pipeline is stable in CI.
	sum := sha256.Sum256([]byte(medicalReport + "\x00" + laymanReport))
	score := int(sum[0]) % 101
	return fmt.Sprintf("Hallucinated: NO\nDifference: LOW\nExplanation: Stubbed audit.\nHallucination Score: %d", score), nil
}

// Embed maps text to a fixed-dimension vector derived from its digest.
// Identical texts get identical vectors, so their cosine similarity is 1.
func (c *Client) Embed(text string) ([]float64, error) {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float64, len(sum))
	for i, b := range sum {
		vec[i] = float64(b)/255.0 - 0.5
	}
	return vec, nil
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}
