package pixel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Event is a conversion event for the analytics sink. Fire-and-forget:
// callers log failures and move on.
type Event struct {
	EventName   string `json:"event_name"`
	OrderID     string `json:"order_id"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Value       int64  `json:"value"`
	Currency    string `json:"currency"`
	ProductID   uint   `json:"product_id"`
	ProductType string `json:"product_type"`
	Timestamp   int64  `json:"timestamp"`
}

type Client struct {
	endpoint    string
	accessToken string
	client      *http.Client
}

func NewClient(endpoint, accessToken string) *Client {
	return &Client{
		endpoint:    endpoint,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// Track posts the event. A client with no endpoint configured is a no-op.
func (c *Client) Track(ctx context.Context, ev Event) error {
	if c.endpoint == "" {
		return nil
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().Unix()
	}
	body, _ := json.Marshal(ev)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pixel: %d %s", resp.StatusCode, string(respBody))
	}
	return nil
}
