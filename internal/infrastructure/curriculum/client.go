package curriculum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"chapterhall/internal/ports/output"
)

var _ output.CurriculumService = (*Client)(nil)

// Client talks to the curriculum-content service; the core only stores
// module references and fetches the text for display.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a curriculum Client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ModuleContent returns the display text for a curriculum module.
func (c *Client) ModuleContent(ctx context.Context, moduleID string) (string, error) {
	url := fmt.Sprintf("%s/modules/%s", c.baseURL, moduleID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build module request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch module: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch module: unexpected status %d", resp.StatusCode)
	}
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode module: %w", err)
	}
	return payload.Content, nil
}
