// Package orders is a thin client for the KeyCRM order API. One attempt per
// call, no retries.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const sourceID = 1

type Client struct {
	URL    string
	APIKey string
	HTTP   *http.Client
}

func New(url, apiKey string) *Client {
	return &Client{
		URL:    url,
		APIKey: apiKey,
		HTTP:   &http.Client{Timeout: 15 * time.Second},
	}
}

type CreateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Color string `json:"color"`
}

type buyer struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type upstreamOrder struct {
	SourceID     int    `json:"source_id"`
	Buyer        buyer  `json:"buyer"`
	BuyerComment string `json:"buyer_comment"`
}

// Create relays the order upstream and returns the raw response body with its
// status code.
func (c *Client) Create(ctx context.Context, in CreateRequest) (int, json.RawMessage, error) {
	body, err := json.Marshal(upstreamOrder{
		SourceID:     sourceID,
		Buyer:        buyer{FullName: in.Name, Phone: in.Phone},
		BuyerComment: in.Color,
	})
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("order api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}
