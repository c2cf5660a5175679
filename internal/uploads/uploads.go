package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// ErrNotConfigured is returned when no image host is set.
var ErrNotConfigured = errors.New("image upload host is not configured")

// Client forwards images to an imgbb-compatible host.
type Client struct {
	endpoint string
	key      string
	http     *http.Client
}

// NewClient creates a Client for endpoint authenticated with key.
func NewClient(endpoint, key string) *Client {
	return &Client{
		endpoint: endpoint,
		key:      key,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type hostResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the image as multipart field "image" and returns its public URL.
func (c *Client) Upload(ctx context.Context, filename string, image io.Reader) (string, error) {
	if c.endpoint == "" || c.key == "" {
		return "", ErrNotConfigured
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	target, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid image host url: %w", err)
	}
	q := target.Query()
	q.Set("key", c.key)
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("image host unreachable: %w", err)
	}
	defer resp.Body.Close()

	var out hostResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode image host response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success || out.Data.URL == "" {
		return "", fmt.Errorf("image host rejected upload (status %d): %s", resp.StatusCode, out.Error.Message)
	}
	return out.Data.URL, nil
}
