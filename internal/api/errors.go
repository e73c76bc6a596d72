package api

import (
	"errors"
	"net/http"

	"wallet_service/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to an HTTP status and JSON body
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPIN):
		// Wrong or missing PIN is an authentication failure
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid transaction PIN"})
	case errors.Is(err, domain.ErrInvalidOTP):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired OTP"})
	case errors.Is(err, domain.ErrPINFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "PIN must be exactly 4 digits"})
	case errors.Is(err, domain.ErrSelfTransfer):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot transfer to yourself"})
	case errors.Is(err, domain.ErrSelfContact):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot add yourself as a contact"})
	case errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
	case errors.Is(err, domain.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
	case errors.Is(err, domain.ErrFraudBlocked):
		// Blocked by the fraud engine before any money moved
		c.JSON(http.StatusForbidden, gin.H{"error": "Transfer blocked by fraud check"})
	case errors.Is(err, domain.ErrAlreadyExecuted):
		c.JSON(http.StatusConflict, gin.H{"error": "Payment already executed"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, domain.ErrWalletNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
	case errors.Is(err, domain.ErrAddressNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment address not found"})
	case errors.Is(err, domain.ErrContactNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
	case errors.Is(err, domain.ErrScheduleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Scheduled payment not found"})
	default:
		// Anything else is an internal failure
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// currentUserID extracts the authenticated user ID set by the JWT middleware
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID.(uint), true
}
