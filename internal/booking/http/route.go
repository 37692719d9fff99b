package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes. commandLimiter throttles the writes
// that take availability locks.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, commandLimiter gin.HandlerFunc) {
	group := g.Group("/bookings")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", commandLimiter, h.Create)
		group.POST("/quote", h.Quote)
		group.PATCH("/:id/status", commandLimiter, h.UpdateStatus)
		group.PATCH("/:id/note", h.UpdateNote)
		group.POST("/:id/details", commandLimiter, h.AddDetails)
	}
}
