package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers promotion routes. Writes additionally require managerMiddleware.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, managerMiddleware gin.HandlerFunc) {
	courts := g.Group("/courts/:id/promotions")
	courts.Use(authMiddleware)
	{
		courts.GET("", h.ListByCourt)
		courts.POST("", managerMiddleware, h.Create)
	}

	group := g.Group("/promotions")
	group.Use(authMiddleware)
	{
		group.GET("/:id", h.Get)
		group.PUT("/:id", managerMiddleware, h.Update)
		group.DELETE("/:id", managerMiddleware, h.Delete)
	}
}
