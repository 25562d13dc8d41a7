// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"aurotex/internal/core/actor"
	"aurotex/internal/domain/auth"
	"aurotex/internal/domain/catalogs/client"
	"aurotex/internal/domain/catalogs/contractor"
	"aurotex/internal/domain/catalogs/product"
	"aurotex/internal/domain/catalogs/rawmaterial"
	"aurotex/internal/domain/catalogs/worker"
	"aurotex/internal/domain/inventory"
	"aurotex/internal/domain/notifications"
	"aurotex/internal/domain/orders"
	"aurotex/internal/domain/reports"
	"aurotex/internal/domain/tasks"
	"aurotex/internal/infrastructure/http/v1/handlers"
	"aurotex/internal/infrastructure/http/v1/middleware"
	"aurotex/internal/infrastructure/storage/postgres"
	"aurotex/pkg/logger"
)

// RouterConfig holds everything the router wires together. Services are
// singletons built in cmd/server; handlers are constructed here.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	// TokenValidator for access token validation
	TokenValidator middleware.TokenValidator

	AuthService         *auth.Service
	RawMaterialService  *rawmaterial.Service
	ClientService       *client.Service
	ContractorService   *contractor.Service
	WorkerService       *worker.Service
	ProductService      *product.Service
	InventoryService    *inventory.Service
	OrderService        *orders.Service
	TaskService         *tasks.Service
	NotificationService *notifications.Service
	ReportService       *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Role guards. Admins pass every check; staff covers internal
	// employees, contractors only reach what is explicitly opened.
	staff := middleware.RequireRole(actor.RoleInternalEmployee)
	adminOnly := middleware.RequireRole(actor.RoleAdmin)

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg, adminOnly)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.TokenValidator))

		registerCatalogRoutes(protected, cfg, staff, adminOnly)
		registerInventoryRoutes(protected, cfg, staff)
		registerDocumentRoutes(protected, cfg, staff, adminOnly)
		registerNotificationRoutes(protected, cfg)
		registerReportRoutes(protected, cfg, staff)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig, adminOnly gin.HandlerFunc) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	public := rg.Group("/auth")
	public.POST("/login", authHandler.Login)
	public.POST("/refresh", authHandler.Refresh)

	// Protected auth endpoints (JWT required)
	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.TokenValidator))
	protected.POST("/logout", authHandler.Logout)
	protected.GET("/me", authHandler.Me)

	// Account management is privileged.
	protected.POST("/register", adminOnly, authHandler.Register)
	protected.GET("/users", adminOnly, authHandler.ListUsers)
	protected.POST("/users/:id/active", adminOnly, authHandler.SetActive)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig, staff, adminOnly gin.HandlerFunc) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- RAW MATERIALS ---
	{
		handler := handlers.NewRawMaterialHandler(baseHandler, cfg.RawMaterialService)
		group := catalogs.Group("/raw-materials")
		RegisterCatalogRoutes(group, handler, staff, adminOnly)
		group.GET("/by-kind/:kind", handler.ListByKind)
	}

	// --- CLIENTS ---
	{
		handler := handlers.NewClientHandler(baseHandler, cfg.ClientService)
		RegisterCatalogRoutes(catalogs.Group("/clients"), handler, staff, adminOnly)
	}

	// --- CONTRACTORS ---
	{
		handler := handlers.NewContractorHandler(baseHandler, cfg.ContractorService)
		group := catalogs.Group("/contractors")
		RegisterCatalogRoutes(group, handler, staff, adminOnly)
		group.GET("/active", handler.ListActive)
		group.POST("/:id/deactivate", staff, handler.Deactivate)
	}

	// --- WORKERS ---
	{
		handler := handlers.NewWorkerHandler(baseHandler, cfg.WorkerService)
		RegisterCatalogRoutes(catalogs.Group("/workers"), handler, staff, adminOnly)
	}

	// --- PRODUCTS ---
	{
		handler := handlers.NewProductHandler(baseHandler, cfg.ProductService)
		RegisterCatalogRoutes(catalogs.Group("/products"), handler, staff, adminOnly)
	}
}

// registerInventoryRoutes registers stock ledger endpoints.
func registerInventoryRoutes(rg *gin.RouterGroup, cfg RouterConfig, staff gin.HandlerFunc) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewInventoryHandler(baseHandler, cfg.InventoryService)

	inv := rg.Group("/inventory")

	inv.GET("/lots", handler.List)
	inv.POST("/lots", staff, handler.Create)
	inv.GET("/lots/by-material/:materialId", handler.GetByMaterial)
	inv.GET("/lots/:id", handler.Get)
	inv.DELETE("/lots/:id", staff, handler.Delete)
	inv.GET("/lots/:id/movements", handler.Movements)
	inv.POST("/lots/:id/restock", staff, handler.Restock)
	inv.POST("/lots/:id/adjust", staff, handler.Adjust)
	inv.POST("/lots/:id/allocate", staff, handler.Allocate)
	inv.POST("/lots/:id/release", staff, handler.Release)
	inv.POST("/lots/:id/consume", staff, handler.Consume)
	inv.PUT("/lots/:id/policy", staff, handler.UpdatePolicy)
	inv.GET("/low-stock", handler.LowStock)
}

// registerDocumentRoutes registers order and task endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig, staff, adminOnly gin.HandlerFunc) {
	docs := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	// --- ORDERS ---
	{
		handler := handlers.NewOrderHandler(baseHandler, cfg.OrderService)
		group := docs.Group("/orders")

		group.GET("", handler.List)
		group.POST("", staff, handler.Create)
		group.GET("/by-number/:number", handler.GetByNumber)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", staff, handler.Update)
		group.POST("/:id/status", staff, handler.ChangeStatus)
		group.POST("/:id/approve", adminOnly, handler.Approve)
		group.POST("/:id/assign", staff, handler.Assign)
		group.POST("/:id/cancel", staff, handler.Cancel)
		group.POST("/:id/allocate-thread", staff, handler.AllocateThread)
		group.POST("/:id/release-thread", staff, handler.ReleaseThread)
		group.POST("/:id/consume-thread", staff, handler.ConsumeThread)
		group.POST("/:id/item-status", staff, handler.SetItemStatus)
	}

	// --- TASKS ---
	{
		handler := handlers.NewTaskHandler(baseHandler, cfg.TaskService)
		group := docs.Group("/tasks")

		group.GET("", handler.List)
		group.POST("", staff, handler.Create)
		group.GET("/by-number/:number", handler.GetByNumber)
		group.GET("/by-order/:orderId", handler.ListByOrder)
		group.GET("/:id", handler.Get)
		group.POST("/:id/approve", adminOnly, handler.Approve)
		group.POST("/:id/reject", adminOnly, handler.Reject)
		group.POST("/:id/start", handler.Start)
		group.POST("/:id/complete", handler.Complete)
		group.POST("/:id/cancel", staff, handler.Cancel)
		group.POST("/:id/progress", handler.AddProgress)
		group.POST("/:id/quality-check", staff, handler.QualityCheck)
		group.PUT("/:id/wage", staff, handler.SetWage)
	}
}

// registerNotificationRoutes registers inbox endpoints.
func registerNotificationRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewNotificationHandler(baseHandler, cfg.NotificationService)

	group := rg.Group("/notifications")
	group.GET("", handler.List)
	group.GET("/unread-count", handler.UnreadCount)
	group.POST("/read-all", handler.MarkAllRead)
	group.POST("/:id/read", handler.MarkRead)
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig, staff gin.HandlerFunc) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewReportsHandler(baseHandler, cfg.ReportService)

	group := rg.Group("/reports")
	group.GET("/inventory-valuation", staff, handler.GetInventoryValuation)
	group.GET("/order-financials", staff, handler.GetOrderFinancialSummary)
	group.GET("/contractor-performance", staff, handler.GetContractorPerformance)
}
