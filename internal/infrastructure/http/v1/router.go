// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"khata/internal/core/feature"
	"khata/internal/domain"
	"khata/internal/domain/catalogs/bankaccount"
	"khata/internal/domain/catalogs/item"
	"khata/internal/domain/catalogs/party"
	"khata/internal/domain/documents"
	"khata/internal/domain/payments"
	"khata/internal/domain/registers/bankbalance"
	"khata/internal/domain/registers/partybalance"
	"khata/internal/domain/registers/stock"
	"khata/internal/domain/sync"
	"khata/internal/infrastructure/http/v1/handlers"
	"khata/internal/infrastructure/http/v1/middleware"
	"khata/internal/infrastructure/storage/postgres"
	"khata/internal/infrastructure/storage/postgres/catalog_repo"
	"khata/internal/infrastructure/storage/postgres/document_repo"
	"khata/internal/infrastructure/storage/postgres/register_repo"
	"khata/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (health checks)
	Pool *postgres.Pool

	// TxManager runs all repository work
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// Flags gates the corrected reversal modes
	Flags feature.FlagProvider

	// Notifier fans committed mutations out to the sync outbox.
	// Nil disables sync notifications.
	Notifier domain.ChangeNotifier

	// SyncEngine runs push/pull against remote replicas
	SyncEngine *sync.Engine

	// SyncStore serves the receiving side of the sync protocol
	SyncStore handlers.SyncStore
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

	// Health endpoints (no firm required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = domain.NopNotifier{}
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerSyncRoutes(v1, cfg)

		// Business endpoints are firm-scoped via the X-Firm-ID header.
		scoped := v1.Group("")
		scoped.Use(middleware.Firm())

		registerCatalogRoutes(scoped, cfg, notifier)
		registerLedgerRoutes(scoped, cfg, notifier)
	}

	return router
}

// registerCatalogRoutes registers item, party and bank account endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig, notifier domain.ChangeNotifier) {
	baseHandler := handlers.NewBaseHandler()

	// --- ITEMS ---
	{
		repo := catalog_repo.NewItemRepo(cfg.TxManager)
		service := item.NewService(repo, cfg.TxManager, notifier)
		handler := handlers.NewItemHandler(baseHandler, service)
		handler.RegisterRoutes(rg.Group("/items"))
	}

	// --- PARTIES ---
	{
		repo := catalog_repo.NewPartyRepo(cfg.TxManager)
		service := party.NewService(repo, cfg.TxManager, notifier)
		handler := handlers.NewPartyHandler(baseHandler, service)
		handler.RegisterRoutes(rg.Group("/parties"))
	}

	// --- BANK ACCOUNTS & TRANSACTIONS ---
	{
		repo := catalog_repo.NewBankAccountRepo(cfg.TxManager)
		txRepo := catalog_repo.NewBankTransactionRepo(cfg.TxManager)
		service := bankaccount.NewService(repo, txRepo, cfg.TxManager, notifier)
		handler := handlers.NewBankAccountHandler(baseHandler, service)
		handler.RegisterRoutes(rg.Group("/bank-accounts"))
		rg.GET("/bank-transactions", handler.ListAllTransactions)
		rg.POST("/bank-transactions", handler.CreateTransactionDirect)
	}
}

// registerLedgerRoutes registers document and payment endpoints, wiring
// the three ledgers underneath them.
func registerLedgerRoutes(rg *gin.RouterGroup, cfg RouterConfig, notifier domain.ChangeNotifier) {
	baseHandler := handlers.NewBaseHandler()

	stockService := stock.NewService(register_repo.NewStockRepo(cfg.TxManager))
	partyService := partybalance.NewService(register_repo.NewPartyBalanceRepo(cfg.TxManager))
	bankService := bankbalance.NewService(register_repo.NewBankBalanceRepo(cfg.TxManager))

	// --- DOCUMENTS ---
	{
		repo := document_repo.NewDocumentRepo(cfg.TxManager)
		service := documents.NewService(repo, stockService, partyService, bankService, cfg.TxManager, cfg.Flags, notifier)
		handler := handlers.NewDocumentHandler(baseHandler, service)
		handler.RegisterRoutes(rg.Group("/documents"))
	}

	// --- PAYMENTS ---
	{
		repo := document_repo.NewPaymentRepo(cfg.TxManager)
		service := payments.NewService(repo, partyService, bankService, cfg.TxManager, cfg.Flags, notifier)
		handler := handlers.NewPaymentHandler(baseHandler, service)
		handler.RegisterRoutes(rg.Group("/payments"))
	}
}

// registerSyncRoutes registers the replica sync endpoints. The receiving
// side (POST /sync, GET /sync/fetch) is addressed by peers and carries
// no firm header; push and pull triggers are firm-scoped.
func registerSyncRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.SyncEngine == nil || cfg.SyncStore == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewSyncHandler(baseHandler, cfg.SyncEngine, cfg.SyncStore)

	syncGroup := rg.Group("/sync")
	{
		syncGroup.POST("", handler.Receive)
		syncGroup.GET("/fetch", handler.Fetch)

		scoped := syncGroup.Group("")
		scoped.Use(middleware.Firm())
		scoped.POST("/push", handler.Push)
		scoped.POST("/pull", handler.Pull)
	}
}
