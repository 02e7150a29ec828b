package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RosterClient handles communication with the space-membership roster.
// Claim eligibility is computed live against it, never cached.
type RosterClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRosterClient creates a new roster client.
func NewRosterClient(baseURL, serviceKey string, logger *zap.Logger) *RosterClient {
	return &RosterClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// IsMember reports whether the user is currently a member of the space.
func (c *RosterClient) IsMember(ctx context.Context, spaceID, userID int64) (bool, error) {
	url := fmt.Sprintf("%s/api/v1/spaces/%d/members/%d", c.baseURL, spaceID, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("X-Service-Key", c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to query membership roster", zap.Error(err),
			zap.Int64("space_id", spaceID), zap.Int64("user_id", userID))
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		// Absence is data: the user simply is not on the roster.
		return false, nil
	default:
		return false, fmt.Errorf("roster service returned status code %d", resp.StatusCode)
	}
}
