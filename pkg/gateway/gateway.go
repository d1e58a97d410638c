package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// StatusCaptured is the normalized status for funds actually collected.
// Anything else (authorized, failed, refunded, ...) is passed through
// lowercased from the provider.
const StatusCaptured = "captured"

// Payment is a provider payment normalized to minor currency units.
type Payment struct {
	ID         string
	OrderID    string
	Status     string
	Amount     int64 // minor units (paise)
	Currency   string
	Method     string
	Email      string
	Contact    string
	CapturedAt time.Time
}

type Order struct {
	ID         string
	Amount     int64 // minor units
	Currency   string
	SessionRef string // checkout session/page reference for the client
}

type CreateOrderRequest struct {
	Amount        int64 // minor units
	Currency      string
	Receipt       string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Notes         map[string]string
}

// Client is the adapter over one payment provider's order/payment API.
type Client interface {
	// Name is the display name used in operator-facing messages, e.g. "Razorpay".
	Name() string
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	// FetchPayment looks up one payment. orderID is required by providers
	// that scope payment ids to an order (Cashfree); Razorpay ignores it.
	FetchPayment(ctx context.Context, orderID, paymentID string) (*Payment, error)
	FetchPaymentsForOrder(ctx context.Context, orderID string) ([]Payment, error)
}

// ErrNotFound means the provider has no record of the payment or order.
var ErrNotFound = errors.New("gateway: not found")

// APIError is a provider-level failure. Retryable covers network errors,
// timeouts, 5xx and auth problems: a later sweep may succeed, and none of
// them says anything about whether the payment was captured.
type APIError struct {
	Gateway    string
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Gateway, e.Message, e.StatusCode)
}

// IsUnavailable reports whether the error is a retryable gateway failure
// rather than a definitive answer about the payment.
func IsUnavailable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// classifyStatus maps an HTTP response code to a typed error.
func classifyStatus(gatewayName string, statusCode int, body string) error {
	if statusCode == 404 {
		return ErrNotFound
	}
	retryable := statusCode >= 500 || statusCode == 401 || statusCode == 403 || statusCode == 429
	return &APIError{
		Gateway:    gatewayName,
		StatusCode: statusCode,
		Message:    body,
		Retryable:  retryable,
	}
}
