package handler

import (
	"errors"
	"net/http"

	"coursio/internal/repository"
	"coursio/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	paymentSvc *service.PaymentService
}

func NewCheckoutHandler(paymentSvc *service.PaymentService) *CheckoutHandler {
	return &CheckoutHandler{paymentSvc: paymentSvc}
}

type createOrderRequest struct {
	Gateway     string `json:"gateway" binding:"required,oneof=razorpay cashfree"`
	ProductID   uint   `json:"product_id" binding:"required"`
	ProductType string `json:"product_type" binding:"required,oneof=COURSE DIGITAL_PRODUCT BUNDLE OTHER"`
	Username    string `json:"username"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"required"`
	OrderBumps  []uint `json:"order_bumps"`
}

// CreateOrder opens a gateway order and records the Pending ledger row.
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.paymentSvc.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		Gateway:     req.Gateway,
		ProductID:   req.ProductID,
		ProductType: req.ProductType,
		Username:    req.Username,
		Email:       req.Email,
		Phone:       req.Phone,
		OrderBumps:  req.OrderBumps,
	})
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not create order"})
		return
	}
	c.JSON(http.StatusCreated, res)
}
