package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"zelia-app/internal/models"
)

type SubscriptionServiceClient struct {
	URL        string
	httpClient *http.Client
}

func NewSubscriptionClient(url string) *SubscriptionServiceClient {
	return &SubscriptionServiceClient{
		URL:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// GetMySubscriptions lists the caller's subscriptions. authHeader is the
// caller's own Authorization header, forwarded as is.
func (c *SubscriptionServiceClient) GetMySubscriptions(ctx context.Context, authHeader string) ([]models.Subscription, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+"/api/subscriptions/my", nil)
	if err != nil {
		return nil, fmt.Errorf("build subscription request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call subscription service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []models.Subscription{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("subscription service returned status %d", resp.StatusCode)
	}

	var subs []models.Subscription
	if err := json.NewDecoder(resp.Body).Decode(&subs); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}
	return subs, nil
}
