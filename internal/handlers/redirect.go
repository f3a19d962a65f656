package handlers

import (
	"errors"
	"net/http"

	"qrtrack/internal/services"

	"github.com/gin-gonic/gin"
)

// RedirectAndTrack serves a scan: resolve the identifier, record the visit,
// send the visitor on. Only an unknown identifier produces an error page;
// once the code is resolved the visitor gets a redirect no matter what the
// tracking pipeline does.
func (h *Handler) RedirectAndTrack(c *gin.Context) {
	identifier := c.Param("id")
	ctx := c.Request.Context()

	code, err := h.trackerService.Resolve(ctx, identifier)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found"})
			return
		}
		h.logger.Error("Redirect lookup failed", "identifier", identifier, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Redirect failed"})
		return
	}

	destination := h.trackerService.Track(ctx, code, c.ClientIP(), c.Request.UserAgent())

	c.Redirect(http.StatusFound, destination)
}
