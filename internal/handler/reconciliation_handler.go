package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"coursio/internal/domain"
	"coursio/internal/middleware"
	"coursio/internal/models"
	"coursio/internal/repository"
	"coursio/internal/service"

	"github.com/gin-gonic/gin"
)

type paymentLister interface {
	ListByStatus(statuses []string, limit int) ([]models.Payment, error)
}

type adminLookup interface {
	GetByID(id uint) (*models.User, error)
}

type ReconciliationHandler struct {
	reconSvc  *service.ReconciliationService
	payments  paymentLister
	users     adminLookup
	auditRepo *repository.AuditLogRepository
}

func NewReconciliationHandler(
	reconSvc *service.ReconciliationService,
	payments paymentLister,
	users adminLookup,
	auditRepo *repository.AuditLogRepository,
) *ReconciliationHandler {
	return &ReconciliationHandler{reconSvc: reconSvc, payments: payments, users: users, auditRepo: auditRepo}
}

type reconcileRequest struct {
	OrderIDs []string `json:"order_ids" binding:"required,min=1"`
}

// Reconcile runs an admin-triggered sweep over the given order ids.
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary := h.reconSvc.Reconcile(c.Request.Context(), req.OrderIDs)
	for _, bucket := range []struct {
		outcome string
		n       int
	}{
		{service.OutcomeSucceeded, summary.Summary.Succeeded},
		{service.OutcomeFailed, summary.Summary.Failed},
		{service.OutcomeSkipped, summary.Summary.Skipped},
		{service.OutcomeError, summary.Summary.Errors},
	} {
		for i := 0; i < bucket.n; i++ {
			middleware.RecordReconciliationItem(bucket.outcome)
		}
	}

	// the audit row names the admin from the DB, not just the token claims
	userID := middleware.GetUserID(c)
	actor := middleware.GetEmail(c)
	if u, err := h.users.GetByID(userID); err == nil {
		actor = u.Email
	}
	if err := h.auditRepo.Create(&models.AuditLog{
		UserID:     &userID,
		Action:     "reconciliation_sweep",
		Resource:   "payment",
		ResourceID: fmt.Sprintf("%d orders", summary.Total),
		Detail: fmt.Sprintf("by %s: succeeded=%d failed=%d skipped=%d errors=%d",
			actor, summary.Summary.Succeeded, summary.Summary.Failed, summary.Summary.Skipped, summary.Summary.Errors),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}); err != nil {
		log.Printf("[Reconcile] audit: %v", err)
	}
	c.JSON(http.StatusOK, summary)
}

// Candidates lists Pending/Failed ledger rows, the population a sweep
// would be pointed at.
func (h *ReconciliationHandler) Candidates(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	statuses := []string{domain.PaymentPending, domain.PaymentFailed}
	if s := c.Query("status"); s == domain.PaymentPending || s == domain.PaymentFailed {
		statuses = []string{s}
	}
	items, err := h.payments.ListByStatus(statuses, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": items, "count": len(items)})
}
