package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ikkim/tableqr-backend/pkg/logger"
)

// maxPages bounds cursor pagination in case the vendor keeps returning a cursor
const maxPages = 100

var ErrUnavailable = errors.New("restaurant catalog unavailable")

// Restaurant is one entry of the vendor restaurant catalog
type Restaurant struct {
	ExternalID string   `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone"`
	Cuisines   []string `json:"cuisines"`
	Active     bool     `json:"active"`
}

type listResponse struct {
	Data       []Restaurant `json:"data"`
	NextCursor string       `json:"next_cursor"`
}

// Client talks to the vendor restaurant catalog API
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a catalog client. apiKey is sent as a bearer token when set.
func NewClient(baseURL, apiKey string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &Client{httpClient: client}
}

// FetchRestaurants walks every page of GET /restaurants
func (c *Client) FetchRestaurants(ctx context.Context) ([]Restaurant, error) {
	var (
		all    []Restaurant
		cursor string
	)

	for page := 0; page < maxPages; page++ {
		var body listResponse
		req := c.httpClient.R().
			SetContext(ctx).
			SetResult(&body)
		if cursor != "" {
			req.SetQueryParam("cursor", cursor)
		}

		resp, err := req.Get("/restaurants")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
		}

		all = append(all, body.Data...)
		if body.NextCursor == "" {
			logger.Debug("Fetched restaurant catalog", map[string]interface{}{
				"pages": page + 1,
				"count": len(all),
			})
			return all, nil
		}
		cursor = body.NextCursor
	}

	return nil, fmt.Errorf("%w: more than %d pages", ErrUnavailable, maxPages)
}
