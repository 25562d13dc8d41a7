// Package main is the entry point for the Aurotex API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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
	v1 "aurotex/internal/infrastructure/http/v1"
	"aurotex/internal/infrastructure/storage/postgres"
	"aurotex/internal/infrastructure/storage/postgres/auth_repo"
	"aurotex/internal/infrastructure/storage/postgres/catalog_repo"
	"aurotex/internal/infrastructure/storage/postgres/document_repo"
	"aurotex/internal/infrastructure/storage/postgres/notification_repo"
	"aurotex/internal/infrastructure/storage/postgres/report_repo"
	"aurotex/pkg/logger"
	"aurotex/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting aurotex server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditTrail, err := postgres.NewAuditTrail(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit trail", "error", err)
	}

	// Number sequences run on the raw pool: a number burned by a rolled
	// back document is an acceptable gap.
	numbers := numerator.New(pool.Pool)

	// --- JWT / Auth ---
	jwtSecret := mustEnv("JWT_SECRET")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	authService := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		auth_repo.NewTokenRepo(txManager),
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)

	// --- Notifications ---
	ruleEngine, err := notifications.NewRuleEngine(notifications.DefaultStockRules())
	if err != nil {
		log.Fatalw("failed to compile stock alert rules", "error", err)
	}
	notificationService := notifications.NewService(
		notification_repo.NewNotificationRepo(txManager),
		txManager,
		ruleEngine,
	)

	// --- Catalogs ---
	rawMaterialService := rawmaterial.NewService(catalog_repo.NewRawMaterialRepo(txManager), txManager, numbers)
	clientService := client.NewService(catalog_repo.NewClientRepo(txManager), txManager, numbers)
	contractorService := contractor.NewService(catalog_repo.NewContractorRepo(txManager), txManager, numbers)
	workerService := worker.NewService(catalog_repo.NewWorkerRepo(txManager), txManager, numbers, notificationService)
	productService := product.NewService(catalog_repo.NewProductRepo(txManager), txManager, numbers)

	// --- Ledger, orders, tasks ---
	inventoryService := inventory.NewService(
		document_repo.NewLotRepo(txManager, auditTrail),
		txManager,
		notificationService,
	)
	orderService := orders.NewService(
		document_repo.NewOrderRepo(txManager, auditTrail),
		txManager,
		inventoryService,
		numbers,
		notificationService,
	)
	taskService := tasks.NewService(
		document_repo.NewTaskRepo(txManager, auditTrail),
		txManager,
		numbers,
		notificationService,
	)

	reportService := reports.NewService(report_repo.NewReportRepo(txManager))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		TokenValidator: jwtService,

		AuthService:         authService,
		RawMaterialService:  rawMaterialService,
		ClientService:       clientService,
		ContractorService:   contractorService,
		WorkerService:       workerService,
		ProductService:      productService,
		InventoryService:    inventoryService,
		OrderService:        orderService,
		TaskService:         taskService,
		NotificationService: notificationService,
		ReportService:       reportService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
