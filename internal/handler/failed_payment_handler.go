package handler

import (
	"errors"
	"net/http"
	"strconv"

	"coursio/internal/middleware"
	"coursio/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FailedPaymentHandler struct {
	failures service.FailureStore
	reconSvc *service.ReconciliationService
}

func NewFailedPaymentHandler(failures service.FailureStore, reconSvc *service.ReconciliationService) *FailedPaymentHandler {
	return &FailedPaymentHandler{failures: failures, reconSvc: reconSvc}
}

// List returns failure records, optionally filtered by ?resolved=true|false.
func (h *FailedPaymentHandler) List(c *gin.Context) {
	var resolved *bool
	if v := c.Query("resolved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "resolved must be true or false"})
			return
		}
		resolved = &b
	}
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	items, err := h.failures.List(resolved, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"failed_payments": items, "count": len(items)})
}

// Retry re-drives the order behind one failure record through the
// reconciliation path.
func (h *FailedPaymentHandler) Retry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res, err := h.reconSvc.RetryFailedPayment(c.Request.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyResolved):
			c.JSON(http.StatusConflict, gin.H{"error": "already resolved"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "failed payment not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "retry failed"})
		}
		return
	}
	c.JSON(http.StatusOK, res)
}

type resolveRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// Resolve manually closes a failure record without re-driving the order.
func (h *FailedPaymentHandler) Resolve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.failures.GetByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "failed payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if err := h.failures.Resolve(uint(id), middleware.GetEmail(c), req.Notes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolved": true})
}
