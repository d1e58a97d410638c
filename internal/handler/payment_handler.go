package handler

import (
	"errors"
	"log"
	"net/http"

	"coursio/internal/middleware"
	"coursio/internal/models"
	"coursio/internal/repository"
	"coursio/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentSvc *service.PaymentService
	auditRepo  *repository.AuditLogRepository
}

func NewPaymentHandler(paymentSvc *service.PaymentService, auditRepo *repository.AuditLogRepository) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc, auditRepo: auditRepo}
}

type verifyRequest struct {
	OrderID          string `json:"order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
}

// Verify is the buyer-initiated post-redirect verification endpoint. A
// capture that fulfills but whose email/invoice misfires still reports
// success: entitlement is committed, notifications are best effort.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.paymentSvc.VerifyPayment(c.Request.Context(), req.OrderID, req.GatewayPaymentID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		log.Printf("[Verify] order %s: %v", req.OrderID, err)
		middleware.RecordFulfillment("error")
		h.audit(c, "payment_verify_failed", req.OrderID, err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "status": "failed", "error": "verification failed"})
		return
	}
	middleware.RecordFulfillment(res.Status)
	if res.Status == "failed" {
		h.audit(c, "payment_verify_rejected", req.OrderID, res.Reason)
		c.JSON(http.StatusBadRequest, res)
		return
	}
	h.audit(c, "payment_verified", req.OrderID, res.Status)
	c.JSON(http.StatusOK, res)
}

func (h *PaymentHandler) audit(c *gin.Context, action, orderID, detail string) {
	if err := h.auditRepo.Create(&models.AuditLog{
		Action:     action,
		Resource:   "payment",
		ResourceID: orderID,
		Detail:     detail,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}); err != nil {
		log.Printf("[Verify] audit: %v", err)
	}
}
