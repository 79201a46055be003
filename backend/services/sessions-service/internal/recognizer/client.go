package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client calls the external plate recognition API: it maps an image
// reference to an optional best-guess license plate string.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// NewClient builds recognizer client with base URL.
func NewClient(baseURL string, client HTTPDoer) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type detectRequest struct {
	ImageRef string `json:"image_ref"`
}

type detectResponse struct {
	Plate string `json:"plate"`
}

// DetectPlate returns the recognized plate text for the image. ok is false
// when the recognizer found no confident text, which is not an error.
func (c *Client) DetectPlate(ctx context.Context, imageRef string) (plate string, ok bool, err error) {
	body, err := json.Marshal(detectRequest{ImageRef: imageRef})
	if err != nil {
		return "", false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/detect", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("recognizer: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("recognizer: unexpected status %d", resp.StatusCode)
	}

	var parsed detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", false, fmt.Errorf("recognizer: decode response: %w", err)
	}

	plate = strings.TrimSpace(parsed.Plate)
	if plate == "" {
		return "", false, nil
	}
	return plate, true, nil
}
