package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"wallet_service/internal/domain"
	"wallet_service/internal/repository"
	"wallet_service/internal/service"
	"wallet_service/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// TransferRequest represents a transfer request. Otp stays empty on the first
// submission; the client resubmits with the code when challenged.
type TransferRequest struct {
	ToWalletID uint            `json:"to_wallet_id" binding:"required"` // Target wallet
	Amount     decimal.Decimal `json:"amount" binding:"required"`       // Transfer amount
	Pin        string          `json:"pin" binding:"required"`          // Transaction PIN
	Otp        string          `json:"otp"`                             // OTP code, if challenged
}

// TransferByHandleRequest transfers to a payment handle instead of a wallet ID
type TransferByHandleRequest struct {
	ToHandle string          `json:"to_handle" binding:"required"` // Target payment handle
	Amount   decimal.Decimal `json:"amount" binding:"required"`    // Transfer amount
	Pin      string          `json:"pin" binding:"required"`       // Transaction PIN
	Otp      string          `json:"otp"`                          // OTP code, if challenged
}

// TransferHandler moves funds to another user's wallet by wallet ID
func TransferHandler(transfers *service.TransferService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req TransferRequest
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		finishTransfer(c, transfers, rdb, userID, req.ToWalletID, req.Amount, req.Pin, req.Otp)
	}
}

// TransferByHandleHandler moves funds to the wallet behind a payment handle
func TransferByHandleHandler(transfers *service.TransferService, addresses *service.AddressService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req TransferByHandleRequest
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Resolve the handle to a wallet, then run the normal transfer path
		wallet, err := addresses.ResolveWallet(c.Request.Context(), req.ToHandle)
		if err != nil {
			respondError(c, err)
			return
		}
		finishTransfer(c, transfers, rdb, userID, wallet.ID, req.Amount, req.Pin, req.Otp)
	}
}

// finishTransfer runs the transfer engine and writes the HTTP response for
// both entry points
func finishTransfer(c *gin.Context, transfers *service.TransferService, rdb *redis.Client, userID, toWalletID uint, amount decimal.Decimal, pin, otpCode string) {
	result, err := transfers.Transfer(c.Request.Context(), userID, toWalletID, amount, pin, otpCode)
	if err != nil {
		respondError(c, err)
		return
	}
	// Challenged: nothing was persisted, the client must resubmit with the code
	if result.OtpRequired {
		c.JSON(http.StatusOK, gin.H{
			"otp_required": true,
			"otp":          result.Otp, // demo delivery channel
			"message":      "OTP verification required, resubmit with the code",
		})
		return
	}
	// Invalidate wallet and transaction history cache for both users
	invalidateWalletCaches(rdb, result.FromWallet.UserID, result.ToWallet.UserID)
	c.JSON(http.StatusOK, gin.H{
		"message":        "Transfer successful",
		"transaction_id": result.Transaction.ID,
		"status":         result.Transaction.Status,
		"balance":        result.FromWallet.Balance,
	})
}

// invalidateWalletCaches drops the cached wallet and the first transaction
// history pages for the given users
func invalidateWalletCaches(rdb *redis.Client, userIDs ...uint) {
	ctx := context.Background()
	for _, id := range userIDs {
		userKey := "wallet:user:" + strconv.Itoa(int(id))
		txPrefix := "txhistory:user:" + strconv.Itoa(int(id))
		_ = utils.DeleteCache(ctx, rdb, userKey)
		// Simple version: delete the first 5 pages at the default size
		for i := 1; i <= 5; i++ {
			_ = utils.DeleteCache(ctx, rdb, txPrefix+":page:"+strconv.Itoa(i)+":size:20")
		}
	}
}

// GetWalletHandler returns wallet info for the authenticated user
func GetWalletHandler(store repository.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		cacheKey := "wallet:user:" + strconv.Itoa(int(userID))
		var wallet domain.Wallet
		found, err := utils.GetCache(ctx, rdb, cacheKey, &wallet)
		if err == nil && found {
			// Return cached wallet
			c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": true})
			return
		}
		// Not in cache, fetch from the store
		w, err := store.Wallets().FindByUserID(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, w, 60*time.Second) // Cache the wallet for 60 seconds
		c.JSON(http.StatusOK, gin.H{"wallet": w, "cached": false})
	}
}

// UpdatePinRequest carries the new transaction PIN
type UpdatePinRequest struct {
	Pin string `json:"pin" binding:"required"` // New 4-digit PIN
}

// UpdatePinHandler sets or replaces the user's transaction PIN
func UpdatePinHandler(transfers *service.TransferService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req UpdatePinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := transfers.UpdatePIN(c.Request.Context(), userID, req.Pin); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "PIN updated"})
	}
}

// GetTransactionHistoryHandler returns paginated transactions for the
// authenticated user's wallet
func GetTransactionHistoryHandler(store repository.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		wallet, err := store.Wallets().FindByUserID(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		page := 1      // Default page
		pageSize := 20 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v
			}
		}
		if ps := c.Query("page_size"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v
			}
		}
		offset := (page - 1) * pageSize
		cacheKey := "txhistory:user:" + strconv.Itoa(int(userID)) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"`
			Page         int                  `json:"page"`
			PageSize     int                  `json:"page_size"`
			Total        int64                `json:"total"`
			TotalPages   int                  `json:"total_pages"`
		}
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions,
				"page":         cached.Page,
				"page_size":    cached.PageSize,
				"total":        cached.Total,
				"total_pages":  cached.TotalPages,
				"cached":       true,
			})
			return
		}
		total, err := store.Transactions().CountByWallet(ctx, wallet.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		transactions, err := store.Transactions().ListByWallet(ctx, wallet.ID, offset, pageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"transactions": transactions,
			"page":         page,
			"page_size":    pageSize,
			"total":        total,
			"total_pages":  totalPages,
			"cached":       false,
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp)
	}
}

// QRHandler returns the scannable payment URI for the user's own address
func QRHandler(addresses *service.AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		amount := decimal.Zero
		// Optional pre-filled amount
		if a := c.Query("amount"); a != "" {
			v, err := decimal.NewFromString(a)
			if err != nil || !v.IsPositive() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
				return
			}
			amount = v
		}
		payload, err := addresses.QRPayload(c.Request.Context(), userID, amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"qr_payload": payload})
	}
}
