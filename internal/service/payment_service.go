package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"coursio/internal/domain"
	"coursio/internal/models"
	"coursio/pkg/gateway"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUnknownGateway = errors.New("unknown payment gateway")

type CreateOrderInput struct {
	Gateway     string
	ProductID   uint
	ProductType string
	Username    string
	Email       string
	Phone       string
	OrderBumps  []uint
}

type CreateOrderResult struct {
	OrderID    string `json:"order_id"`
	Amount     int64  `json:"amount"` // major units
	Currency   string `json:"currency"`
	Gateway    string `json:"gateway"`
	SessionRef string `json:"session_ref"`
}

// PaymentService owns the buyer-initiated checkout path: order creation and
// post-redirect verification.
type PaymentService struct {
	payments    PaymentStore
	catalog     Catalog
	bumps       BumpStore
	fulfillment *FulfillmentService
	gateways    map[string]gateway.Client
}

func NewPaymentService(
	payments PaymentStore,
	catalog Catalog,
	bumps BumpStore,
	fulfillment *FulfillmentService,
	gateways map[string]gateway.Client,
) *PaymentService {
	return &PaymentService{
		payments:    payments,
		catalog:     catalog,
		bumps:       bumps,
		fulfillment: fulfillment,
		gateways:    gateways,
	}
}

func (s *PaymentService) gatewayFor(name string) (gateway.Client, error) {
	c, ok := s.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGateway, name)
	}
	return c, nil
}

// CreateOrder resolves the product (plus any chosen bumps), opens a gateway
// order and records the Pending ledger row.
func (s *PaymentService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	client, err := s.gatewayFor(in.Gateway)
	if err != nil {
		return nil, err
	}
	item, err := s.catalog.Resolve(in.ProductType, in.ProductID)
	if err != nil {
		return nil, err
	}
	total := item.Price()
	currency := item.Currency()
	var bumpIDs []uint
	for _, id := range in.OrderBumps {
		b, err := s.bumps.GetActive(id)
		if err != nil {
			log.Printf("[Checkout] bump %d unavailable, dropped from order: %v", id, err)
			continue
		}
		total += b.BumpPrice
		bumpIDs = append(bumpIDs, b.ID)
		if err := s.bumps.IncrementImpressions(b.ID); err != nil {
			log.Printf("[Checkout] bump %d: impression counter: %v", b.ID, err)
		}
	}

	order, err := client.CreateOrder(ctx, gateway.CreateOrderRequest{
		Amount:        total * 100,
		Currency:      currency,
		Receipt:       "rcpt_" + uuid.NewString()[:13],
		CustomerName:  in.Username,
		CustomerEmail: in.Email,
		CustomerPhone: in.Phone,
		Notes: map[string]string{
			"product_id":   fmt.Sprintf("%d", in.ProductID),
			"product_type": in.ProductType,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s order: %w", client.Name(), err)
	}

	p := &models.Payment{
		OrderID:     order.ID,
		Gateway:     in.Gateway,
		Username:    in.Username,
		Email:       in.Email,
		Phone:       in.Phone,
		ProductID:   in.ProductID,
		ProductType: in.ProductType,
		Amount:      total,
		Currency:    currency,
		Status:      domain.PaymentPending,
	}
	p.SetBumpIDs(bumpIDs)
	if err := s.payments.Create(p); err != nil {
		return nil, fmt.Errorf("ledger row: %w", err)
	}
	return &CreateOrderResult{
		OrderID:    order.ID,
		Amount:     total,
		Currency:   currency,
		Gateway:    in.Gateway,
		SessionRef: order.SessionRef,
	}, nil
}

type VerifyResult struct {
	Success   bool            `json:"success"`
	Status    string          `json:"status"` // success | already_paid | failed
	Reason    string          `json:"reason,omitempty"`
	Payment   *models.Payment `json:"payment,omitempty"`
	ResetLink string          `json:"reset_link,omitempty"`
}

// VerifyPayment confirms a gateway capture against the ledger and drives
// fulfillment. Business rejections (amount mismatch, not captured) come back
// as a failed result with a nil error; only system failures return an error.
func (s *PaymentService) VerifyPayment(ctx context.Context, orderID, gatewayPaymentID string) (*VerifyResult, error) {
	p, err := s.payments.GetByOrderID(orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	if domain.IsSettled(p.Status) {
		return &VerifyResult{Success: true, Status: "already_paid", Payment: p}, nil
	}

	client, err := s.gatewayFor(p.Gateway)
	if err != nil {
		return nil, err
	}
	gp, err := client.FetchPayment(ctx, p.OrderID, gatewayPaymentID)
	if err != nil {
		return nil, fmt.Errorf("%s payment %s: %w", client.Name(), gatewayPaymentID, err)
	}

	// Razorpay payment ids are global, so a captured payment from one order
	// could otherwise be replayed against any other Pending order.
	if gp.OrderID != "" && gp.OrderID != p.OrderID {
		reason := fmt.Sprintf("Payment %s belongs to order %s, not %s", gp.ID, gp.OrderID, p.OrderID)
		log.Printf("[Verify] order %s: %s", orderID, reason)
		if err := s.payments.MarkFailed(p.OrderID, reason); err != nil {
			log.Printf("[Verify] order %s: mark failed: %v", orderID, err)
		}
		return &VerifyResult{Status: "failed", Reason: reason}, nil
	}

	// Compare in one minor-unit base; a mismatch is a hard failure, never
	// silently accepted.
	if gp.Amount/100 != p.Amount {
		reason := fmt.Sprintf("Amount mismatch (%s: %d, DB: %d)", client.Name(), gp.Amount/100, p.Amount)
		log.Printf("[Verify] order %s: %s", orderID, reason)
		if err := s.payments.MarkFailed(p.OrderID, reason); err != nil {
			log.Printf("[Verify] order %s: mark failed: %v", orderID, err)
		}
		return &VerifyResult{Status: "failed", Reason: reason}, nil
	}
	if gp.Status != gateway.StatusCaptured {
		reason := fmt.Sprintf("Payment not captured (%s status: %s)", client.Name(), gp.Status)
		log.Printf("[Verify] order %s: %s", orderID, reason)
		if err := s.payments.MarkFailed(p.OrderID, reason); err != nil {
			log.Printf("[Verify] order %s: mark failed: %v", orderID, err)
		}
		return &VerifyResult{Status: "failed", Reason: reason}, nil
	}

	res, err := s.fulfillment.Fulfill(ctx, FulfillInput{
		Payment:          p,
		GatewayPaymentID: gp.ID,
		Username:         p.Username,
		Email:            p.Email,
		Phone:            p.Phone,
		OrderBumps:       p.BumpIDList(),
		TerminalStatus:   domain.PaymentSuccess,
	})
	if err != nil {
		return nil, err
	}
	return &VerifyResult{
		Success:   true,
		Status:    strings.ToLower(res.Status),
		Payment:   res.Payment,
		ResetLink: res.ResetLink,
	}, nil
}
