package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"coursio/internal/models"

	"github.com/gin-gonic/gin"
)

type stubAuditLister struct {
	gotResource   string
	gotResourceID string
	rows          []models.AuditLog
}

func (s *stubAuditLister) ListByResource(resource, resourceID string, limit int) ([]models.AuditLog, error) {
	s.gotResource = resource
	s.gotResourceID = resourceID
	return s.rows, nil
}

func auditRouter(lister *stubAuditLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/admin/audit-logs", NewAuditHandler(lister).List)
	return r
}

func TestAuditList(t *testing.T) {
	lister := &stubAuditLister{rows: []models.AuditLog{
		{Action: "payment_verified", Resource: "payment", ResourceID: "ord_1"},
		{Action: "payment_verify_rejected", Resource: "payment", ResourceID: "ord_1"},
	}}
	r := auditRouter(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit-logs?resource_id=ord_1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if lister.gotResource != "payment" || lister.gotResourceID != "ord_1" {
		t.Errorf("queried %s/%s", lister.gotResource, lister.gotResourceID)
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

func TestAuditListRequiresResourceID(t *testing.T) {
	r := auditRouter(&stubAuditLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit-logs", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
