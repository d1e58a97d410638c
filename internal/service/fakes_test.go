package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"coursio/internal/domain"
	"coursio/internal/models"
	"coursio/internal/repository"
	"coursio/pkg/gateway"
	"coursio/pkg/invoice"
	"coursio/pkg/mailer"
	"coursio/pkg/pixel"

	"gorm.io/gorm"
)

type fakePaymentStore struct {
	mu        sync.Mutex
	rows      map[string]*models.Payment
	createErr error
	updateErr error
	findErr   error
}

func newFakePaymentStore(rows ...*models.Payment) *fakePaymentStore {
	s := &fakePaymentStore{rows: make(map[string]*models.Payment)}
	for _, p := range rows {
		cp := *p
		s.rows[p.OrderID] = &cp
	}
	return s
}

func (s *fakePaymentStore) Create(p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.rows[p.OrderID]; ok {
		return errors.New("duplicate order_id")
	}
	cp := *p
	s.rows[p.OrderID] = &cp
	return nil
}

func (s *fakePaymentStore) Update(p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	cp := *p
	s.rows[p.OrderID] = &cp
	return nil
}

func (s *fakePaymentStore) GetByOrderID(orderID string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakePaymentStore) FindSettled(email string, productID uint, productType, excludeOrderID string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, p := range s.rows {
		if p.Email == email && p.ProductID == productID && p.ProductType == productType &&
			p.OrderID != excludeOrderID && domain.IsSettled(p.Status) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakePaymentStore) MarkFailed(orderID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = domain.PaymentFailed
	p.FailureReason = reason
	return nil
}

func (s *fakePaymentStore) get(orderID string) *models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[orderID]
}

func (s *fakePaymentStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type fakeUserStore struct {
	mu         sync.Mutex
	byEmail    map[string]*models.User
	nextID     uint
	orders     map[uint][]string
	reconciled map[uint]int
	createErr  error
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{
		byEmail:    make(map[string]*models.User),
		orders:     make(map[uint][]string),
		reconciled: make(map[uint]int),
		nextID:     1,
	}
	for _, u := range users {
		if u.ID == 0 {
			u.ID = s.nextID
		}
		if u.ID >= s.nextID {
			s.nextID = u.ID + 1
		}
		cp := *u
		s.byEmail[u.Email] = &cp
	}
	return s
}

func (s *fakeUserStore) Create(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	u.ID = s.nextID
	s.nextID++
	cp := *u
	s.byEmail[u.Email] = &cp
	return nil
}

func (s *fakeUserStore) GetByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) Update(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.byEmail[u.Email] = &cp
	return nil
}

func (s *fakeUserStore) AppendOrder(userID uint, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.orders[userID] {
		if id == orderID {
			return nil
		}
	}
	s.orders[userID] = append(s.orders[userID], orderID)
	return nil
}

func (s *fakeUserStore) IncrementReconciled(userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconciled[userID]++
	return nil
}

type fakeCatalog struct {
	courses  map[uint]*models.Course
	digitals map[uint]*models.DigitalProduct
	bundles  map[uint]*models.Bundle
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		courses:  make(map[uint]*models.Course),
		digitals: make(map[uint]*models.DigitalProduct),
		bundles:  make(map[uint]*models.Bundle),
	}
}

func (c *fakeCatalog) Resolve(productType string, productID uint) (*repository.CatalogItem, error) {
	switch productType {
	case domain.ProductCourse:
		if course, ok := c.courses[productID]; ok {
			return &repository.CatalogItem{Type: domain.ProductCourse, Course: course}, nil
		}
	case domain.ProductDigital:
		if d, ok := c.digitals[productID]; ok {
			return &repository.CatalogItem{Type: domain.ProductDigital, Digital: d}, nil
		}
	case domain.ProductBundle:
		if b, ok := c.bundles[productID]; ok {
			return &repository.CatalogItem{Type: domain.ProductBundle, Bundle: b}, nil
		}
	case domain.ProductOther:
		return &repository.CatalogItem{Type: domain.ProductOther}, nil
	}
	return nil, repository.ErrProductNotFound
}

func (c *fakeCatalog) GetDigitalProduct(id uint) (*models.DigitalProduct, error) {
	if d, ok := c.digitals[id]; ok {
		return d, nil
	}
	return nil, repository.ErrProductNotFound
}

type fakeBumpStore struct {
	mu          sync.Mutex
	bumps       map[uint]*models.OrderBump
	impressions map[uint]int
	conversions map[uint]int
}

func newFakeBumpStore(bumps ...*models.OrderBump) *fakeBumpStore {
	s := &fakeBumpStore{
		bumps:       make(map[uint]*models.OrderBump),
		impressions: make(map[uint]int),
		conversions: make(map[uint]int),
	}
	for _, b := range bumps {
		s.bumps[b.ID] = b
	}
	return s
}

func (s *fakeBumpStore) GetActive(id uint) (*models.OrderBump, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bumps[id]
	if !ok || !b.IsActive {
		return nil, repository.ErrBumpNotFound
	}
	return b, nil
}

func (s *fakeBumpStore) IncrementImpressions(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.impressions[id]++
	return nil
}

func (s *fakeBumpStore) IncrementConversions(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversions[id]++
	return nil
}

type fakeFailureStore struct {
	mu   sync.Mutex
	rows []*models.FailedPayment
}

func (s *fakeFailureStore) Create(fp *models.FailedPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fp.ID = uint(len(s.rows) + 1)
	s.rows = append(s.rows, fp)
	return nil
}

func (s *fakeFailureStore) GetByID(id uint) (*models.FailedPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fp := range s.rows {
		if fp.ID == id {
			return fp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeFailureStore) List(resolved *bool, limit int) ([]models.FailedPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FailedPayment
	for _, fp := range s.rows {
		if resolved != nil && fp.Resolved != *resolved {
			continue
		}
		out = append(out, *fp)
	}
	return out, nil
}

func (s *fakeFailureStore) Resolve(id uint, resolvedBy, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fp := range s.rows {
		if fp.ID == id {
			fp.Resolved = true
			fp.ResolvedBy = resolvedBy
			fp.ResolutionNotes = notes
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *fakeFailureStore) MarkResolvedByOrder(orderID, resolvedBy, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fp := range s.rows {
		if fp.OrderID == orderID && !fp.Resolved {
			fp.Resolved = true
			fp.ResolvedBy = resolvedBy
			fp.ResolutionNotes = notes
		}
	}
	return nil
}

func (s *fakeFailureStore) byContext(ctx string) []*models.FailedPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.FailedPayment
	for _, fp := range s.rows {
		if fp.Context == ctx {
			out = append(out, fp)
		}
	}
	return out
}

type fakeCRM struct {
	mu      sync.Mutex
	applied []string // "email:status"
	err     error
}

func (c *fakeCRM) ApplyPaymentStatus(_ context.Context, email, status, _, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.applied = append(c.applied, email+":"+status)
	return nil
}

type fakeTokenIssuer struct {
	token string
	err   error
}

func (t *fakeTokenIssuer) Issue(_ *models.User) (string, error) {
	return t.token, t.err
}

type fakeInvoiceRenderer struct {
	err error
}

func (r *fakeInvoiceRenderer) Render(d invoice.Data) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "/tmp/" + d.Number + ".pdf", nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.PurchaseEmail
	err  error
}

func (m *fakeMailer) SendPurchaseConfirmation(_ context.Context, e mailer.PurchaseEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, e)
	return nil
}

type fakeTracker struct {
	mu     sync.Mutex
	events []pixel.Event
	err    error
}

func (t *fakeTracker) Track(_ context.Context, ev pixel.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.events = append(t.events, ev)
	return nil
}

// fakeGateway implements gateway.Client.
type fakeGateway struct {
	mu          sync.Mutex
	name        string
	payments    map[string]*gateway.Payment // by payment id
	byOrder     map[string][]gateway.Payment
	fetchErr    error
	listErr     error
	fetchCalls  int
	createCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		name:     "Razorpay",
		payments: make(map[string]*gateway.Payment),
		byOrder:  make(map[string][]gateway.Payment),
	}
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) CreateOrder(_ context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	id := fmt.Sprintf("order_fake_%d", g.createCalls)
	return &gateway.Order{ID: id, Amount: req.Amount, Currency: req.Currency, SessionRef: id}, nil
}

func (g *fakeGateway) FetchPayment(_ context.Context, _, paymentID string) (*gateway.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchCalls++
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	p, ok := g.payments[paymentID]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return p, nil
}

func (g *fakeGateway) FetchPaymentsForOrder(_ context.Context, orderID string) ([]gateway.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.byOrder[orderID], nil
}
