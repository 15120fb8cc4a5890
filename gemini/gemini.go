package gemini

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"chexray-pipeline/llm"
)

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type embedRequest struct {
	Content content `json:"content"`
}

type embedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// Client talks to the Google Generative Language REST API.
type Client struct {
	apiKey         string
	model          string
	embeddingModel string
	baseURLs       []string
	http           *http.Client
}

func NewClient(apiKey, model, embeddingModel string) *Client {
	return &Client{
		apiKey:         apiKey,
		model:          model,
		embeddingModel: embeddingModel,
		// try v1beta first, then v1
		baseURLs: []string{
			"https://generativelanguage.googleapis.com/v1beta",
			"https://generativelanguage.googleapis.com/v1",
		},
		http: &http.Client{},
	}
}

func (c *Client) SourceName() string {
	return "Gemini"
}

func (c *Client) Translate(medicalReport string) (string, error) {
	return c.generateContent(llm.TranslatePrompt(medicalReport))
}

func (c *Client) AuditConsistency(medicalReport, laymanReport string) (string, error) {
	return c.generateContent(llm.AuditPrompt(medicalReport, laymanReport))
}

func (c *Client) generateContent(prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: prompt}},
			},
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for _, base := range c.baseURLs {
		ep := fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, c.model, c.apiKey)
		bodyBytes, err := c.post(ep, data)
		if err != nil {
			lastErr = err
			continue
		}
		var gr generateResponse
		if err := json.Unmarshal(bodyBytes, &gr); err != nil {
			lastErr = fmt.Errorf("failed to parse response: %w", err)
			continue
		}
		if len(gr.Candidates) == 0 {
			lastErr = fmt.Errorf("no candidates in response")
			continue
		}
		// find first text part
		for _, p := range gr.Candidates[0].Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
		lastErr = fmt.Errorf("no text part in response")
	}
	return "", lastErr
}

func (c *Client) Embed(text string) ([]float64, error) {
	reqBody := embedRequest{
		Content: content{
			Parts: []part{{Text: text}},
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for _, base := range c.baseURLs {
		ep := fmt.Sprintf("%s/models/%s:embedContent?key=%s", base, c.embeddingModel, c.apiKey)
		bodyBytes, err := c.post(ep, data)
		if err != nil {
			lastErr = err
			continue
		}
		var er embedResponse
		if err := json.Unmarshal(bodyBytes, &er); err != nil {
			lastErr = fmt.Errorf("failed to parse response: %w", err)
			continue
		}
		if len(er.Embedding.Values) == 0 {
			lastErr = fmt.Errorf("empty embedding in response")
			continue
		}
		return er.Embedding.Values, nil
	}
	return nil, lastErr
}

func (c *Client) post(endpoint string, data []byte) ([]byte, error) {
	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}
	return bodyBytes, nil
}
