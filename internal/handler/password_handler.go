package handler

import (
	"errors"
	"net/http"

	"coursio/internal/service"

	"github.com/gin-gonic/gin"
)

type PasswordHandler struct {
	tokenSvc *service.TokenService
}

func NewPasswordHandler(tokenSvc *service.TokenService) *PasswordHandler {
	return &PasswordHandler{tokenSvc: tokenSvc}
}

type setPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// SetPassword redeems the one-time token mailed after a first purchase.
func (h *PasswordHandler) SetPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.tokenSvc.Redeem(req.Email, req.Token, req.Password); err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired reset token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not set password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}
