package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"coursio/internal/domain"
	"coursio/pkg/gateway"

	"github.com/avast/retry-go"
	"gorm.io/gorm"
)

var ErrAlreadyResolved = errors.New("failed payment already resolved")

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
	OutcomeError     = "error"
)

type ItemResult struct {
	OrderID string `json:"order_id"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

type BatchSummary struct {
	Total     int          `json:"total"`
	Succeeded []ItemResult `json:"succeeded"`
	Failed    []ItemResult `json:"failed"`
	Skipped   []ItemResult `json:"skipped"`
	Errors    []ItemResult `json:"errors"`
	Summary   struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
		Skipped   int `json:"skipped"`
		Errors    int `json:"errors"`
	} `json:"summary"`
}

func (b *BatchSummary) add(r ItemResult) {
	switch r.Outcome {
	case OutcomeSucceeded:
		b.Succeeded = append(b.Succeeded, r)
		b.Summary.Succeeded++
	case OutcomeFailed:
		b.Failed = append(b.Failed, r)
		b.Summary.Failed++
	case OutcomeSkipped:
		b.Skipped = append(b.Skipped, r)
		b.Summary.Skipped++
	default:
		b.Errors = append(b.Errors, r)
		b.Summary.Errors++
	}
}

// ReconciliationService re-verifies Pending/Failed ledger rows against the
// gateway's current truth and heals captured ones to Reconciled.
type ReconciliationService struct {
	payments    PaymentStore
	failures    FailureStore
	fulfillment *FulfillmentService
	gateways    map[string]gateway.Client
	retries     uint
}

func NewReconciliationService(
	payments PaymentStore,
	failures FailureStore,
	fulfillment *FulfillmentService,
	gateways map[string]gateway.Client,
	retries uint,
) *ReconciliationService {
	if retries == 0 {
		retries = 3
	}
	return &ReconciliationService{
		payments:    payments,
		failures:    failures,
		fulfillment: fulfillment,
		gateways:    gateways,
		retries:     retries,
	}
}

// Reconcile processes the order ids concurrently. Items are isolated: one
// item's panic or error never aborts the batch.
func (s *ReconciliationService) Reconcile(ctx context.Context, orderIDs []string) *BatchSummary {
	summary := &BatchSummary{Total: len(orderIDs)}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, orderID := range orderIDs {
		wg.Add(1)
		go func(orderID string) {
			defer wg.Done()
			r := s.reconcileOne(ctx, orderID)
			mu.Lock()
			summary.add(r)
			mu.Unlock()
		}(orderID)
	}
	wg.Wait()
	log.Printf("[Reconcile] batch done: %d total, %d succeeded, %d failed, %d skipped, %d errors",
		summary.Total, summary.Summary.Succeeded, summary.Summary.Failed, summary.Summary.Skipped, summary.Summary.Errors)
	return summary
}

func (s *ReconciliationService) reconcileOne(ctx context.Context, orderID string) (result ItemResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Reconcile] order %s: panic: %v", orderID, r)
			result = ItemResult{OrderID: orderID, Outcome: OutcomeError, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()
	result = ItemResult{OrderID: orderID}

	p, err := s.payments.GetByOrderID(orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		result.Outcome = OutcomeSkipped
		result.Reason = "Not found"
		return result
	}
	if err != nil {
		result.Outcome = OutcomeError
		result.Reason = err.Error()
		return result
	}
	if p.Status != domain.PaymentFailed && p.Status != domain.PaymentPending {
		result.Outcome = OutcomeSkipped
		result.Reason = fmt.Sprintf("status is %s", p.Status)
		return result
	}

	client, ok := s.gateways[p.Gateway]
	if !ok {
		result.Outcome = OutcomeError
		result.Reason = fmt.Sprintf("unknown gateway %q", p.Gateway)
		return result
	}

	gp, err := s.resolveGatewayPayment(ctx, client, p.OrderID, p.GatewayPaymentID)
	if err != nil {
		// Unavailable gateways are left for a later sweep; the ledger is
		// not the one lying here.
		result.Outcome = OutcomeError
		result.Reason = err.Error()
		return result
	}
	if gp == nil {
		result.Outcome = OutcomeError
		result.Reason = "No gateway payment found"
		return result
	}
	// A stored id could point at another order's payment; never heal off it.
	if gp.OrderID != "" && gp.OrderID != p.OrderID {
		reason := fmt.Sprintf("Payment %s belongs to order %s, not %s", gp.ID, gp.OrderID, p.OrderID)
		if err := s.payments.MarkFailed(p.OrderID, reason); err != nil {
			log.Printf("[Reconcile] order %s: mark failed: %v", orderID, err)
		}
		result.Outcome = OutcomeFailed
		result.Reason = reason
		return result
	}
	if p.GatewayPaymentID == "" {
		// persist the discovered id for future lookups
		p.GatewayPaymentID = gp.ID
		if err := s.payments.Update(p); err != nil {
			log.Printf("[Reconcile] order %s: persist gateway payment id: %v", orderID, err)
		}
	}

	if gp.Amount/100 != p.Amount {
		reason := fmt.Sprintf("Amount mismatch (%s: %d, DB: %d)", client.Name(), gp.Amount/100, p.Amount)
		if err := s.payments.MarkFailed(p.OrderID, reason); err != nil {
			log.Printf("[Reconcile] order %s: mark failed: %v", orderID, err)
		}
		result.Outcome = OutcomeFailed
		result.Reason = reason
		return result
	}
	if gp.Status != gateway.StatusCaptured {
		reason := fmt.Sprintf("Gateway status: %s", gp.Status)
		if err := s.payments.MarkFailed(p.OrderID, reason); err != nil {
			log.Printf("[Reconcile] order %s: mark failed: %v", orderID, err)
		}
		result.Outcome = OutcomeFailed
		result.Reason = reason
		return result
	}

	res, err := s.fulfillment.Fulfill(ctx, FulfillInput{
		Payment:          p,
		GatewayPaymentID: gp.ID,
		Username:         p.Username,
		Email:            p.Email,
		Phone:            p.Phone,
		OrderBumps:       p.BumpIDList(),
		TerminalStatus:   domain.PaymentReconciled,
	})
	if err != nil {
		result.Outcome = OutcomeError
		result.Reason = err.Error()
		return result
	}
	if res.Status == "already_paid" {
		result.Outcome = OutcomeSkipped
		result.Reason = "Already paid"
		return result
	}

	if err := s.failures.MarkResolvedByOrder(orderID, "reconciliation", "Recovered by reconciliation sweep"); err != nil {
		log.Printf("[Reconcile] order %s: resolve failure records: %v", orderID, err)
	}
	result.Outcome = OutcomeSucceeded
	result.Reason = res.Status
	return result
}

// resolveGatewayPayment prefers the stored payment id, falling back to the
// order's payment listing. Gateway calls retry on transient failures only.
func (s *ReconciliationService) resolveGatewayPayment(ctx context.Context, client gateway.Client, orderID, paymentID string) (*gateway.Payment, error) {
	var gp *gateway.Payment
	err := retry.Do(
		func() error {
			if paymentID != "" {
				p, err := client.FetchPayment(ctx, orderID, paymentID)
				if err != nil {
					return err
				}
				gp = p
				return nil
			}
			list, err := client.FetchPaymentsForOrder(ctx, orderID)
			if err != nil {
				return err
			}
			if len(list) > 0 {
				gp = &list[0]
			}
			return nil
		},
		retry.Attempts(s.retries),
		retry.RetryIf(gateway.IsUnavailable),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if gateway.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return gp, nil
}

// RetryFailedPayment re-drives the order referenced by one failure record.
func (s *ReconciliationService) RetryFailedPayment(ctx context.Context, failedPaymentID uint) (*ItemResult, error) {
	fp, err := s.failures.GetByID(failedPaymentID)
	if err != nil {
		return nil, err
	}
	if fp.Resolved {
		return nil, ErrAlreadyResolved
	}
	r := s.reconcileOne(ctx, fp.OrderID)
	return &r, nil
}
