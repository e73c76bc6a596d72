package api

import (
	"net/http"
	"strconv"
	"time"

	"wallet_service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateScheduledPaymentRequest schedules a future transfer to a handle
type CreateScheduledPaymentRequest struct {
	ToHandle    string          `json:"to_handle" binding:"required"`    // Receiver payment handle
	Amount      decimal.Decimal `json:"amount" binding:"required"`      // Transfer amount
	ScheduledAt time.Time       `json:"scheduled_at" binding:"required"` // Due time (RFC3339)
}

// UpdateScheduledPaymentRequest amends a pending payment
type UpdateScheduledPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`       // New amount
	ScheduledAt time.Time       `json:"scheduled_at" binding:"required"` // New due time
}

// CreateScheduledPaymentHandler schedules a payment for later execution
func CreateScheduledPaymentHandler(payments *service.ScheduledPaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req CreateScheduledPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		payment, err := payments.Create(c.Request.Context(), userID, req.ToHandle, req.Amount, req.ScheduledAt)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"payment": payment})
	}
}

// ListScheduledPaymentsHandler returns the user's scheduled payments
func ListScheduledPaymentsHandler(payments *service.ScheduledPaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		list, err := payments.List(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payments": list})
	}
}

// UpdateScheduledPaymentHandler amends a not-yet-executed payment
func UpdateScheduledPaymentHandler(payments *service.ScheduledPaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
			return
		}
		var req UpdateScheduledPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		payment, err := payments.Update(c.Request.Context(), uint(id), userID, req.Amount, req.ScheduledAt)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payment": payment})
	}
}

// CancelScheduledPaymentHandler cancels a not-yet-executed payment
func CancelScheduledPaymentHandler(payments *service.ScheduledPaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
			return
		}
		if err := payments.Cancel(c.Request.Context(), uint(id), userID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment cancelled"})
	}
}
