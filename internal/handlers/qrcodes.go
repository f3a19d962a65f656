package handlers

import (
	"errors"
	"net/http"

	"qrtrack/internal/services"

	"github.com/gin-gonic/gin"
)

type GenerateRequest struct {
	TargetURL   string `json:"targetUrl" binding:"required"`
	CustomAlias string `json:"customAlias,omitempty"`
}

type UpdateURLRequest struct {
	NewURL string `json:"newUrl" binding:"required"`
}

func (h *Handler) GenerateQRCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target URL is required"})
		return
	}

	result, err := h.codeService.Generate(services.GenerateDTO{
		UserID:      userID,
		TargetURL:   req.TargetURL,
		CustomAlias: req.CustomAlias,
		IPAddress:   c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, services.ErrAliasTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Custom alias already exists"})
			return
		}
		h.logger.Error("QR code generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "QR code generation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"imageData":  result.ImageData,
			"identifier": result.Identifier,
			"targetUrl":  result.TargetURL,
		},
	})
}

func (h *Handler) GetQRCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	code, err := h.codeService.Get(userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		h.logger.Error("Failed to fetch QR code", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching QR code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": code})
}

func (h *Handler) ListQRCodes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	codes, err := h.codeService.List(userID)
	if err != nil {
		h.logger.Error("Failed to list QR codes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching QR codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": codes})
}

func (h *Handler) UpdateQRCodeURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req UpdateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New URL is required"})
		return
	}

	code, err := h.codeService.UpdateURL(userID, c.Param("id"), req.NewURL)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		h.logger.Error("Failed to update QR code URL", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"currentUrl": code.CurrentURL,
			"identifier": code.Identifier,
		},
	})
}

func (h *Handler) DeleteQRCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	identifier := c.Param("id")
	if err := h.codeService.Delete(userID, identifier); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		h.logger.Error("Failed to delete QR code", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting QR code"})
		return
	}

	h.trackerService.InvalidateResolve(c.Request.Context(), identifier)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "QR code deleted successfully"})
}
