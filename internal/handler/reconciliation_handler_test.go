package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coursio/internal/domain"
	"coursio/internal/models"

	"github.com/gin-gonic/gin"
)

type stubPaymentLister struct {
	gotStatuses []string
	gotLimit    int
	rows        []models.Payment
	err         error
}

func (s *stubPaymentLister) ListByStatus(statuses []string, limit int) ([]models.Payment, error) {
	s.gotStatuses = statuses
	s.gotLimit = limit
	return s.rows, s.err
}

func candidatesRouter(lister *stubPaymentLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewReconciliationHandler(nil, lister, nil, nil)
	r.GET("/api/v1/admin/reconcile/candidates", h.Candidates)
	return r
}

func TestReconcileCandidates(t *testing.T) {
	lister := &stubPaymentLister{rows: []models.Payment{
		{OrderID: "ord_1", Status: domain.PaymentPending},
		{OrderID: "ord_2", Status: domain.PaymentFailed},
	}}
	r := candidatesRouter(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reconcile/candidates", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(lister.gotStatuses) != 2 || lister.gotStatuses[0] != domain.PaymentPending || lister.gotStatuses[1] != domain.PaymentFailed {
		t.Errorf("statuses = %v", lister.gotStatuses)
	}
	if lister.gotLimit != 100 {
		t.Errorf("limit = %d, want default 100", lister.gotLimit)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 {
		t.Errorf("count = %d", body.Count)
	}
}

func TestReconcileCandidatesFilters(t *testing.T) {
	lister := &stubPaymentLister{}
	r := candidatesRouter(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reconcile/candidates?status=FAILED&limit=25", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(lister.gotStatuses) != 1 || lister.gotStatuses[0] != domain.PaymentFailed {
		t.Errorf("statuses = %v", lister.gotStatuses)
	}
	if lister.gotLimit != 25 {
		t.Errorf("limit = %d", lister.gotLimit)
	}
}

func TestReconcileCandidatesListError(t *testing.T) {
	r := candidatesRouter(&stubPaymentLister{err: errors.New("db gone")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reconcile/candidates", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
