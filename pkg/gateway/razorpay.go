package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// RazorpayClient talks to the Razorpay v1 REST API with basic auth.
// Amounts are already in paise on the wire.
type RazorpayClient struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	client    *http.Client
}

func NewRazorpayClient(baseURL, keyID, keySecret string, timeout time.Duration) *RazorpayClient {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RazorpayClient{
		BaseURL:   baseURL,
		KeyID:     keyID,
		KeySecret: keySecret,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *RazorpayClient) Name() string { return "Razorpay" }

type razorpayPayment struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	Status    string `json:"status"` // created, authorized, captured, refunded, failed
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Method    string `json:"method"`
	Email     string `json:"email"`
	Contact   string `json:"contact"`
	CreatedAt int64  `json:"created_at"`
}

func (p razorpayPayment) normalize() Payment {
	return Payment{
		ID:         p.ID,
		OrderID:    p.OrderID,
		Status:     p.Status, // razorpay already uses "captured"
		Amount:     p.Amount,
		Currency:   p.Currency,
		Method:     p.Method,
		Email:      p.Email,
		Contact:    p.Contact,
		CapturedAt: time.Unix(p.CreatedAt, 0),
	}
}

type razorpayOrderReq struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrderResp struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	body, _ := json.Marshal(razorpayOrderReq{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	respBody, err := c.do(ctx, http.MethodPost, "/orders", body)
	if err != nil {
		return nil, err
	}
	var out razorpayOrderResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("razorpay order decode: %w", err)
	}
	return &Order{ID: out.ID, Amount: out.Amount, Currency: out.Currency, SessionRef: out.ID}, nil
}

func (c *RazorpayClient) FetchPayment(ctx context.Context, _ string, paymentID string) (*Payment, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	var out razorpayPayment
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("razorpay payment decode: %w", err)
	}
	p := out.normalize()
	return &p, nil
}

func (c *RazorpayClient) FetchPaymentsForOrder(ctx context.Context, orderID string) ([]Payment, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/orders/"+orderID+"/payments", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Count int               `json:"count"`
		Items []razorpayPayment `json:"items"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("razorpay payments decode: %w", err)
	}
	payments := make([]Payment, 0, len(out.Items))
	for _, it := range out.Items {
		payments = append(payments, it.normalize())
	}
	return payments, nil
}

func (c *RazorpayClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.KeyID, c.KeySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[Razorpay] %s %s -> %d %s", method, path, resp.StatusCode, string(respBody))
		return nil, classifyStatus("razorpay", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
