package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client generates an image for a prompt and returns its URL. A single
// attempt is made per call; retries are the caller's decision.
type Client interface {
	Generate(ctx context.Context, prompt string) (url string, err error)
}

type httpClient struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewClient builds a Client for the image-generation API.
func NewClient(apiURL, apiKey string) Client {
	return &httpClient{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
}

type generateResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

func (c *httpClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiURL == "" {
		return "", fmt.Errorf("image generation API is not configured")
	}

	body, err := json.Marshal(generateRequest{Prompt: prompt, Size: "1024x1024"})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image generation request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image generation response: %w", err)
	}

	var result generateResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("invalid image generation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Error != "" {
			return "", fmt.Errorf("image generation failed: %s", result.Error)
		}
		return "", fmt.Errorf("image generation failed with status %d", resp.StatusCode)
	}

	if result.URL == "" {
		return "", fmt.Errorf("image generation returned no URL")
	}

	return result.URL, nil
}
