package handler

import (
	"net/http"
	"strconv"

	"coursio/internal/models"

	"github.com/gin-gonic/gin"
)

type auditLister interface {
	ListByResource(resource, resourceID string, limit int) ([]models.AuditLog, error)
}

type AuditHandler struct {
	audits auditLister
}

func NewAuditHandler(audits auditLister) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// List returns the audit trail for one resource, newest first. Used by
// operators chasing what happened to a specific order.
func (h *AuditHandler) List(c *gin.Context) {
	resourceID := c.Query("resource_id")
	if resourceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource_id is required"})
		return
	}
	resource := c.DefaultQuery("resource", "payment")
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	items, err := h.audits.ListByResource(resource, resourceID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": items, "count": len(items)})
}
