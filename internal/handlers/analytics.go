package handlers

import (
	"errors"
	"net/http"

	"qrtrack/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetQRCodeAnalytics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	analytics, err := h.analyticsService.ForCode(userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "QR code not found"})
			return
		}
		h.logger.Error("Failed to compute analytics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": analytics})
}

func (h *Handler) GetGlobalAnalytics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	analytics, err := h.analyticsService.Global(userID)
	if err != nil {
		h.logger.Error("Failed to compute global analytics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": analytics})
}
