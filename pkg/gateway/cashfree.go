package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"
)

// CashfreeClient talks to the Cashfree PG API. Cashfree reports amounts as
// rupee floats; they are normalized to paise here so callers compare in one
// minor-unit base.
type CashfreeClient struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	APIVersion   string
	client       *http.Client
}

func NewCashfreeClient(baseURL, clientID, clientSecret, apiVersion string, timeout time.Duration) *CashfreeClient {
	if baseURL == "" {
		baseURL = "https://api.cashfree.com/pg"
	}
	if apiVersion == "" {
		apiVersion = "2023-08-01"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CashfreeClient{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		APIVersion:   apiVersion,
		client:       &http.Client{Timeout: timeout},
	}
}

func (c *CashfreeClient) Name() string { return "Cashfree" }

type cashfreePayment struct {
	CfPaymentID   json.Number `json:"cf_payment_id"`
	OrderID       string      `json:"order_id"`
	PaymentStatus string      `json:"payment_status"` // SUCCESS, FAILED, PENDING, ...
	PaymentAmount float64     `json:"payment_amount"`
	PaymentTime   string      `json:"payment_time"`
	Currency      string      `json:"payment_currency"`
	PaymentGroup  string      `json:"payment_group"`
	CustomerEmail string      `json:"customer_email"`
	CustomerPhone string      `json:"customer_phone"`
}

func (p cashfreePayment) normalize() Payment {
	status := strings.ToLower(p.PaymentStatus)
	if status == "success" {
		status = StatusCaptured
	}
	capturedAt, _ := time.Parse(time.RFC3339, p.PaymentTime)
	return Payment{
		ID:         p.CfPaymentID.String(),
		OrderID:    p.OrderID,
		Status:     status,
		Amount:     int64(math.Round(p.PaymentAmount * 100)),
		Currency:   p.Currency,
		Method:     strings.ToLower(p.PaymentGroup),
		Email:      p.CustomerEmail,
		Contact:    p.CustomerPhone,
		CapturedAt: capturedAt,
	}
}

type cashfreeOrderReq struct {
	OrderAmount     float64                 `json:"order_amount"`
	OrderCurrency   string                  `json:"order_currency"`
	CustomerDetails cashfreeCustomerDetails `json:"customer_details"`
	OrderNote       string                  `json:"order_note,omitempty"`
}

type cashfreeCustomerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type cashfreeOrderResp struct {
	OrderID          string  `json:"order_id"`
	OrderAmount      float64 `json:"order_amount"`
	OrderCurrency    string  `json:"order_currency"`
	PaymentSessionID string  `json:"payment_session_id"`
}

func (c *CashfreeClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	body, _ := json.Marshal(cashfreeOrderReq{
		OrderAmount:   float64(req.Amount) / 100,
		OrderCurrency: req.Currency,
		CustomerDetails: cashfreeCustomerDetails{
			CustomerID:    req.Receipt,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
		},
	})
	respBody, err := c.do(ctx, http.MethodPost, "/orders", body)
	if err != nil {
		return nil, err
	}
	var out cashfreeOrderResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("cashfree order decode: %w", err)
	}
	return &Order{
		ID:         out.OrderID,
		Amount:     int64(math.Round(out.OrderAmount * 100)),
		Currency:   out.OrderCurrency,
		SessionRef: out.PaymentSessionID,
	}, nil
}

func (c *CashfreeClient) FetchPayment(ctx context.Context, orderID, paymentID string) (*Payment, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/orders/"+orderID+"/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	var out cashfreePayment
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("cashfree payment decode: %w", err)
	}
	p := out.normalize()
	return &p, nil
}

func (c *CashfreeClient) FetchPaymentsForOrder(ctx context.Context, orderID string) ([]Payment, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/orders/"+orderID+"/payments", nil)
	if err != nil {
		return nil, err
	}
	var items []cashfreePayment
	if err := json.Unmarshal(respBody, &items); err != nil {
		return nil, fmt.Errorf("cashfree payments decode: %w", err)
	}
	payments := make([]Payment, 0, len(items))
	for _, it := range items {
		payments = append(payments, it.normalize())
	}
	return payments, nil
}

func (c *CashfreeClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-client-id", c.ClientID)
	req.Header.Set("x-client-secret", c.ClientSecret)
	req.Header.Set("x-api-version", c.APIVersion)
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
		log.Printf("[Cashfree] %s %s -> %d %s", method, path, resp.StatusCode, string(respBody))
		return nil, classifyStatus("cashfree", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
