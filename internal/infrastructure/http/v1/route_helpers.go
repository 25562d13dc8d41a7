// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	GetByCode(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// Reads are open to every authenticated user; mutations carry the given
// write guard and deletes the delete guard.
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, write, del gin.HandlerFunc) {
	group.GET("", handler.List)
	group.POST("", write, handler.Create)
	group.GET("/by-code/:code", handler.GetByCode)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", write, handler.Update)
	group.DELETE("/:id", del, handler.Delete)
	group.POST("/:id/deletion-mark", del, handler.SetDeletionMark)
}
