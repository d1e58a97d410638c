package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"time"

	"coursio/internal/domain"
	"coursio/internal/models"
	"coursio/internal/repository"
	"coursio/pkg/invoice"
	"coursio/pkg/mailer"
	"coursio/pkg/pixel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store interfaces are declared here, on the consumer side; the gorm
// repositories satisfy them.

type PaymentStore interface {
	Create(p *models.Payment) error
	Update(p *models.Payment) error
	GetByOrderID(orderID string) (*models.Payment, error)
	FindSettled(email string, productID uint, productType, excludeOrderID string) (*models.Payment, error)
	MarkFailed(orderID, reason string) error
}

type UserStore interface {
	Create(u *models.User) error
	GetByEmail(email string) (*models.User, error)
	Update(u *models.User) error
	AppendOrder(userID uint, orderID string) error
	IncrementReconciled(userID uint) error
}

type Catalog interface {
	Resolve(productType string, productID uint) (*repository.CatalogItem, error)
	GetDigitalProduct(id uint) (*models.DigitalProduct, error)
}

type BumpStore interface {
	GetActive(id uint) (*models.OrderBump, error)
	IncrementImpressions(id uint) error
	IncrementConversions(id uint) error
}

type FailureStore interface {
	Create(fp *models.FailedPayment) error
	GetByID(id uint) (*models.FailedPayment, error)
	List(resolved *bool, limit int) ([]models.FailedPayment, error)
	Resolve(id uint, resolvedBy, notes string) error
	MarkResolvedByOrder(orderID, resolvedBy, notes string) error
}

type ContactSyncer interface {
	ApplyPaymentStatus(ctx context.Context, email, status, username, phone string) error
}

type TokenIssuer interface {
	Issue(u *models.User) (string, error)
}

type InvoiceRenderer interface {
	Render(d invoice.Data) (string, error)
}

type ConversionTracker interface {
	Track(ctx context.Context, ev pixel.Event) error
}

var ErrPaymentNotFound = errors.New("payment not found")

// FulfillInput is a payment the caller has already verified against the
// gateway: status captured and amount matched.
type FulfillInput struct {
	Payment          *models.Payment
	GatewayPaymentID string
	Username         string
	Email            string
	Phone            string
	OrderBumps       []uint
	// TerminalStatus is SUCCESS on the buyer-initiated path and RECONCILED
	// when the sweep heals a Failed/Pending row.
	TerminalStatus string
}

type FulfillResult struct {
	Status    string          `json:"status"` // success | reconciled | already_paid
	Payment   *models.Payment `json:"payment"`
	NewUser   bool            `json:"new_user"`
	ResetLink string          `json:"reset_link,omitempty"`
	// Notices lists best-effort steps that failed after entitlement was
	// committed. Informational only; the result is still a success.
	Notices []string `json:"notices,omitempty"`
}

// FulfillmentService drives the post-capture workflow: a strict commit
// phase (user, product, entitlement, ledger) whose first error flips the
// payment to Failed, then a notify phase (CRM, invoice, email, pixel)
// whose failures are collected but never undo the commit.
type FulfillmentService struct {
	payments PaymentStore
	users    UserStore
	catalog  Catalog
	bumps    BumpStore
	failures FailureStore
	crm      ContactSyncer
	tokens   TokenIssuer
	invoices InvoiceRenderer
	mail     mailer.Sender
	tracker  ConversionTracker

	frontendBaseURL string
}

func NewFulfillmentService(
	payments PaymentStore,
	users UserStore,
	catalog Catalog,
	bumps BumpStore,
	failures FailureStore,
	crm ContactSyncer,
	tokens TokenIssuer,
	invoices InvoiceRenderer,
	mail mailer.Sender,
	tracker ConversionTracker,
	frontendBaseURL string,
) *FulfillmentService {
	return &FulfillmentService{
		payments:        payments,
		users:           users,
		catalog:         catalog,
		bumps:           bumps,
		failures:        failures,
		crm:             crm,
		tokens:          tokens,
		invoices:        invoices,
		mail:            mail,
		tracker:         tracker,
		frontendBaseURL: frontendBaseURL,
	}
}

type commitState struct {
	payment   *models.Payment
	user      *models.User
	item      *repository.CatalogItem
	terminal  string
	isNewUser bool
	resetLink string
}

func (s *FulfillmentService) Fulfill(ctx context.Context, in FulfillInput) (*FulfillResult, error) {
	st, res, err := s.commit(ctx, in)
	if err != nil {
		return nil, err
	}
	if res != nil {
		// already paid: no re-entitlement, no second email
		return res, nil
	}
	notices := s.notify(ctx, st)
	return &FulfillResult{
		Status:    strings.ToLower(st.terminal),
		Payment:   st.payment,
		NewUser:   st.isNewUser,
		ResetLink: st.resetLink,
		Notices:   notices,
	}, nil
}

// commit runs the entitlement-critical prefix. A non-nil FulfillResult
// means the flow short-circuited on the duplicate-entitlement guard.
func (s *FulfillmentService) commit(ctx context.Context, in FulfillInput) (*commitState, *FulfillResult, error) {
	p := in.Payment
	email := in.Email
	if email == "" {
		email = p.Email
	}
	username := in.Username
	if username == "" {
		username = p.Username
	}
	phone := in.Phone
	if phone == "" {
		phone = p.Phone
	}
	terminal := in.TerminalStatus
	if terminal == "" {
		terminal = domain.PaymentSuccess
	}

	st := &commitState{payment: p, terminal: terminal}

	// 1. user upsert
	u, err := s.users.GetByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u = &models.User{Username: username, Email: email, Phone: phone, Role: domain.RoleStudent}
		if err := s.users.Create(u); err != nil {
			return nil, nil, s.fail(ctx, in, domain.CtxUserCreation, fmt.Errorf("create user: %w", err))
		}
		st.isNewUser = true
	} else if err != nil {
		return nil, nil, s.fail(ctx, in, domain.CtxUserCreation, fmt.Errorf("lookup user: %w", err))
	}
	st.user = u

	// 2. product lookup
	item, err := s.catalog.Resolve(p.ProductType, p.ProductID)
	if err != nil {
		return nil, nil, s.fail(ctx, in, domain.CtxOrderVerification, fmt.Errorf("resolve product %s/%d: %w", p.ProductType, p.ProductID, err))
	}
	st.item = item

	// 3. duplicate-entitlement guard
	existing, err := s.payments.FindSettled(email, p.ProductID, p.ProductType, p.OrderID)
	if err != nil {
		return nil, nil, s.fail(ctx, in, domain.CtxDatabaseError, fmt.Errorf("duplicate check: %w", err))
	}
	if existing != nil {
		log.Printf("[Fulfillment] order %s: %s already owns product %s/%d via order %s",
			p.OrderID, email, p.ProductType, p.ProductID, existing.OrderID)
		return nil, &FulfillResult{Status: "already_paid", Payment: existing}, nil
	}

	// 4. mark payment settled with a frozen product snapshot
	p.Status = terminal
	p.GatewayPaymentID = in.GatewayPaymentID
	p.Username = username
	p.Email = email
	p.Phone = phone
	p.FailureReason = ""
	p.SetSnapshot(s.buildSnapshot(item, p))
	if err := s.payments.Update(p); err != nil {
		return nil, nil, s.fail(ctx, in, domain.CtxPaymentProcessing, fmt.Errorf("mark %s: %w", terminal, err))
	}

	// 5. order-bump fan-out; a broken bump is skipped, never fatal
	for _, bumpID := range in.OrderBumps {
		if err := s.fulfillBump(p, bumpID, terminal); err != nil {
			log.Printf("[Fulfillment] order %s: bump %d skipped: %v", p.OrderID, bumpID, err)
			s.logFailure(in, domain.CtxOrderBump, fmt.Errorf("bump %d: %w", bumpID, err))
		}
	}

	// 6. entitlement grant
	if err := s.users.AppendOrder(u.ID, p.OrderID); err != nil {
		return nil, nil, s.fail(ctx, in, domain.CtxDatabaseError, fmt.Errorf("grant entitlement: %w", err))
	}
	if terminal == domain.PaymentReconciled {
		if err := s.users.IncrementReconciled(u.ID); err != nil {
			log.Printf("[Fulfillment] order %s: reconciled counter: %v", p.OrderID, err)
		}
	}

	// 7. reset-link issuance for first-time buyers
	if st.isNewUser {
		token, err := s.tokens.Issue(u)
		if err != nil {
			log.Printf("[Fulfillment] order %s: reset token: %v", p.OrderID, err)
		} else if token != "" {
			st.resetLink = fmt.Sprintf("%s/set-password?email=%s&token=%s", s.frontendBaseURL, email, token)
		}
	}

	return st, nil, nil
}

// notify runs the best-effort suffix. Nothing here can fail the fulfillment.
func (s *FulfillmentService) notify(ctx context.Context, st *commitState) []string {
	var notices []string
	p := st.payment

	// 8. CRM tag sync
	if err := s.crm.ApplyPaymentStatus(ctx, p.Email, st.terminal, p.Username, p.Phone); err != nil {
		log.Printf("[Fulfillment] order %s: crm sync: %v", p.OrderID, err)
		notices = append(notices, "crm sync failed")
	}

	// 9. invoice + email
	snap := p.Snapshot()
	invoicePath, err := s.invoices.Render(invoice.Data{
		Number:       "INV-" + strings.ToUpper(uuid.NewString()[:8]),
		OrderID:      p.OrderID,
		Username:     p.Username,
		Email:        p.Email,
		ProductTitle: snap.Title,
		ProductType:  p.ProductType,
		Amount:       p.Amount,
		Currency:     p.Currency,
		IssuedAt:     time.Now(),
	})
	if err != nil {
		log.Printf("[Fulfillment] order %s: invoice: %v", p.OrderID, err)
		notices = append(notices, "invoice generation failed")
	}
	if err := s.mail.SendPurchaseConfirmation(ctx, mailer.PurchaseEmail{
		To:           p.Email,
		Username:     p.Username,
		OrderID:      p.OrderID,
		ProductTitle: snap.Title,
		Amount:       p.Amount,
		Currency:     p.Currency,
		InvoicePath:  invoicePath,
		ResetLink:    st.resetLink,
	}); err != nil {
		log.Printf("[Fulfillment] order %s: email: %v", p.OrderID, err)
		notices = append(notices, "confirmation email failed")
		s.logFailure(FulfillInput{Payment: p, Email: p.Email, Username: p.Username, Phone: p.Phone},
			domain.CtxEmailSending, err)
	}

	// 10. conversion pixel
	if err := s.tracker.Track(ctx, pixel.Event{
		EventName:   "Purchase",
		OrderID:     p.OrderID,
		Email:       p.Email,
		Phone:       p.Phone,
		Value:       p.Amount,
		Currency:    p.Currency,
		ProductID:   p.ProductID,
		ProductType: p.ProductType,
	}); err != nil {
		log.Printf("[Fulfillment] order %s: pixel: %v", p.OrderID, err)
		notices = append(notices, "conversion tracking failed")
	}

	return notices
}

// fail flips the ledger row to Failed, writes the diagnostic record, tags
// the contact as Failed and returns the original error.
func (s *FulfillmentService) fail(ctx context.Context, in FulfillInput, failCtx string, cause error) error {
	p := in.Payment
	if err := s.payments.MarkFailed(p.OrderID, cause.Error()); err != nil {
		log.Printf("[Fulfillment] order %s: mark failed: %v", p.OrderID, err)
	}
	s.logFailure(in, failCtx, cause)
	email := in.Email
	if email == "" {
		email = p.Email
	}
	if err := s.crm.ApplyPaymentStatus(ctx, email, domain.PaymentFailed, in.Username, in.Phone); err != nil {
		log.Printf("[Fulfillment] order %s: crm failed-tag: %v", p.OrderID, err)
	}
	return cause
}

func (s *FulfillmentService) logFailure(in FulfillInput, failCtx string, cause error) {
	p := in.Payment
	replay, _ := json.Marshal(map[string]interface{}{
		"order_id":           p.OrderID,
		"gateway_payment_id": in.GatewayPaymentID,
		"order_bumps":        in.OrderBumps,
		"terminal_status":    in.TerminalStatus,
	})
	fp := &models.FailedPayment{
		OrderID:          p.OrderID,
		ProductID:        p.ProductID,
		ProductType:      p.ProductType,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Error:            cause.Error(),
		ErrorCode:        failCtx,
		StackTrace:       string(debug.Stack()),
		Context:          failCtx,
		CustomerEmail:    p.Email,
		CustomerPhone:    p.Phone,
		CustomerUsername: p.Username,
		PaymentData:      string(replay),
	}
	if err := s.failures.Create(fp); err != nil {
		log.Printf("[Fulfillment] order %s: failure log: %v", p.OrderID, err)
	}
}

// buildSnapshot freezes the live product into the ledger row. The switch is
// exhaustive over the product-type union.
func (s *FulfillmentService) buildSnapshot(item *repository.CatalogItem, p *models.Payment) models.ProductSnapshot {
	switch item.Type {
	case domain.ProductCourse:
		c := item.Course
		return models.ProductSnapshot{
			Kind:        domain.ProductCourse,
			Title:       c.Title,
			Description: c.Description,
			Price:       c.Price,
			Currency:    c.Currency,
			CoverURL:    c.CoverURL,
			Lectures:    c.LectureCount(),
		}
	case domain.ProductDigital:
		d := item.Digital
		return models.ProductSnapshot{
			Kind:        domain.ProductDigital,
			Title:       d.Title,
			Description: d.Description,
			Price:       d.Price,
			Currency:    d.Currency,
			CoverURL:    d.CoverURL,
			FileURL:     d.FileURL,
		}
	case domain.ProductBundle:
		b := item.Bundle
		return models.ProductSnapshot{
			Kind:        domain.ProductBundle,
			Title:       b.Title,
			Description: b.Description,
			Price:       b.Price,
			Currency:    b.Currency,
			CourseIDs:   b.CourseIDList(),
		}
	case domain.ProductOther:
		// no catalog record; the ledger row is all we have
		return models.ProductSnapshot{
			Kind:     domain.ProductOther,
			Title:    "Purchase " + p.OrderID,
			Price:    p.Amount,
			Currency: p.Currency,
		}
	}
	return models.ProductSnapshot{Kind: item.Type}
}

// fulfillBump creates the auxiliary Success row for one configured upsell.
func (s *FulfillmentService) fulfillBump(parent *models.Payment, bumpID uint, terminal string) error {
	b, err := s.bumps.GetActive(bumpID)
	if err != nil {
		return err
	}
	d, err := s.catalog.GetDigitalProduct(b.BumpProductID)
	if err != nil {
		return fmt.Errorf("bump product %d: %w", b.BumpProductID, err)
	}
	bp := &models.Payment{
		OrderID:          fmt.Sprintf("%s_bump_%d", parent.OrderID, b.ID),
		GatewayPaymentID: parent.GatewayPaymentID,
		Gateway:          parent.Gateway,
		Username:         parent.Username,
		Email:            parent.Email,
		Phone:            parent.Phone,
		ProductID:        b.BumpProductID,
		ProductType:      domain.ProductDigital,
		Amount:           b.BumpPrice,
		Currency:         b.Currency,
		Status:           terminal,
		IsOrderBump:      true,
		ParentOrder:      parent.OrderID,
	}
	bp.SetSnapshot(models.ProductSnapshot{
		Kind:        domain.ProductDigital,
		Title:       d.Title,
		Description: d.Description,
		Price:       b.BumpPrice, // the bump price, not the list price
		Currency:    b.Currency,
		CoverURL:    d.CoverURL,
		FileURL:     d.FileURL,
	})
	if err := s.payments.Create(bp); err != nil {
		return err
	}
	if err := s.bumps.IncrementConversions(b.ID); err != nil {
		log.Printf("[Fulfillment] bump %d: conversion counter: %v", b.ID, err)
	}
	return nil
}
