package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"chapterhall/internal/domain"
	"chapterhall/internal/domain/entities"
	"chapterhall/internal/ports/output"
)

var _ output.MembershipService = (*Client)(nil)

// Client talks to the chapter-membership service. The core consumes it
// read-only: member lists for roster seeding and roles for authorization.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a membership Client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type memberPayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
}

// ActiveMembers returns the chapter's active members with their roles.
func (c *Client) ActiveMembers(ctx context.Context, chapterID string) ([]entities.Member, error) {
	url := fmt.Sprintf("%s/chapters/%s/members", c.baseURL, chapterID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build members request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch members: unexpected status %d", resp.StatusCode)
	}
	var payload []memberPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	var members []entities.Member
	for _, p := range payload {
		if !p.Active {
			continue
		}
		members = append(members, entities.Member{
			UserID:      p.UserID,
			ChapterID:   chapterID,
			DisplayName: p.DisplayName,
			Role:        entities.Role(p.Role),
			Active:      true,
		})
	}
	return members, nil
}

// FindMember resolves one member's current record. Queried fresh on every
// authorization check; roles are never cached.
func (c *Client) FindMember(ctx context.Context, chapterID, userID string) (*entities.Member, error) {
	members, err := c.ActiveMembers(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].UserID == userID {
			return &members[i], nil
		}
	}
	return nil, domain.ErrNotChapterMember
}
