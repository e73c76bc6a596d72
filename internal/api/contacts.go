package api

import (
	"net/http"
	"strconv"

	"wallet_service/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateContactRequest saves a payee under a display name
type CreateContactRequest struct {
	DisplayName string `json:"display_name" binding:"required"` // Name shown in the contact list
	Handle      string `json:"handle" binding:"required"`       // Payee's payment handle
}

// CreateContactHandler adds a payee to the user's contact book
func CreateContactHandler(contacts *service.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req CreateContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		contact, err := contacts.Create(c.Request.Context(), userID, req.DisplayName, req.Handle)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"contact": contact})
	}
}

// ListContactsHandler returns the user's saved payees
func ListContactsHandler(contacts *service.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		list, err := contacts.List(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"contacts": list})
	}
}

// DeleteContactHandler removes one of the user's contacts
func DeleteContactHandler(contacts *service.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact ID"})
			return
		}
		if err := contacts.Delete(c.Request.Context(), userID, uint(id)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Contact deleted"})
	}
}
