package handlers

import (
	"qrtrack/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Public, rate limited: the redirect is the internet-facing hot path
	// and the auth endpoints take credentials.
	public := r.Group("/api")
	if rateLimiter != nil {
		public.Use(h.RateLimitMiddleware(rateLimiter))
	}
	public.POST("/auth/register", h.RegisterUser)
	public.POST("/auth/login", h.LoginUser)
	public.GET("/qr/redirect/:id", h.RedirectAndTrack)

	// Owner-scoped
	authorized := r.Group("/api/qr")
	authorized.Use(h.AuthRequired())
	{
		authorized.POST("/generate", h.GenerateQRCode)
		authorized.GET("/list", h.ListQRCodes)
		authorized.GET("/analytics", h.GetGlobalAnalytics)
		authorized.GET("/analytics/:id", h.GetQRCodeAnalytics)
		authorized.GET("/:id", h.GetQRCode)
		authorized.PUT("/:id/url", h.UpdateQRCodeURL)
		authorized.DELETE("/:id", h.DeleteQRCode)
	}

	return r
}
