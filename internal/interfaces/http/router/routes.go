package router

import (
	"fmt"

	"github.com/erp/retail/internal/application/finance"
	importapp "github.com/erp/retail/internal/application/import"
	"github.com/erp/retail/internal/application/inventory"
	"github.com/erp/retail/internal/application/trade"
	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/erp/retail/internal/interfaces/http/handler"
	"github.com/erp/retail/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the HTTP adapter is built from
type Dependencies struct {
	Config    *config.Config
	Logger    *zap.Logger
	Verifier  middleware.TokenVerifier
	DB        handler.Pinger
	Meters    *telemetry.MeterProvider
	Ledger    *inventory.LedgerService
	Finance   *finance.FinanceService
	Purchases *trade.PurchaseService
	Sales     *trade.SalesService
	Imports   *importapp.Service
}

// NewEngine builds the gin engine with the middleware chain and every route
func NewEngine(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(middleware.TracingConfig{
			Enabled:     cfg.Telemetry.Enabled,
			ServiceName: cfg.Telemetry.ServiceName,
		}),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: deps.Meters,
			Enabled:       cfg.Telemetry.MetricsEnabled,
		}),
		middleware.Secure(),
		middleware.CORS(cfg.HTTP),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if cfg.HTTP.RateLimitEnabled {
		limiter, err := middleware.NewRateLimiter(cfg.HTTP.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit %q: %w", cfg.HTTP.RateLimit, err)
		}
		engine.Use(middleware.RateLimit(limiter))
	}
	engine.Use(middleware.Deadline(cfg.HTTP.OperationDeadline))

	health := handler.NewHealthHandler(deps.DB)
	engine.GET("/health", health.Live)
	engine.GET("/ready", health.Ready)

	tenantCfg := middleware.DefaultTenantConfig(deps.Verifier)
	tenantCfg.HeaderEnabled = cfg.JWT.AllowTenantHeader

	NewRouter(engine, WithGroupMiddleware(
		middleware.TenantMiddleware(tenantCfg),
		middleware.TracingAttributeInjector(),
	)).Register(Groups(deps)...).Setup()

	return engine, nil
}

// Groups returns the route groups of every API resource
func Groups(deps Dependencies) []RouteRegistrar {
	maxFileSize := int64(0)
	if deps.Config != nil {
		maxFileSize = deps.Config.Import.MaxFileSize
	}

	products := handler.NewProductHandler(deps.Ledger)
	categories := handler.NewCategoryHandler(deps.Ledger)
	purchases := handler.NewPurchaseHandler(deps.Purchases)
	sales := handler.NewSaleHandler(deps.Sales, deps.Finance)
	customers := handler.NewCustomerHandler(deps.Sales)
	money := handler.NewFinanceHandler(deps.Finance)
	imports := handler.NewImportHandler(deps.Imports, maxFileSize)

	return []RouteRegistrar{
		NewDomainGroup("products", "/products").
			POST("", products.Create).
			GET("", products.List).
			GET("/code-suggestion", products.SuggestCode).
			GET("/average-cost", products.AverageCost).
			GET("/:id", products.Get).
			PUT("/:id", products.Update).
			DELETE("/:id", products.Delete).
			POST("/:id/adjust-stock", products.AdjustStock).
			POST("/:id/opening-stock", products.RecordOpeningStock).
			GET("/:id/stock-events", products.StockEvents),

		NewDomainGroup("categories", "/categories").
			POST("", categories.Create).
			GET("", categories.List).
			PUT("/:id", categories.Rename).
			DELETE("/:id", categories.Delete),

		NewDomainGroup("purchases", "/purchases").
			POST("", purchases.Create).
			GET("", purchases.List).
			POST("/bulk", purchases.BulkCreate).
			POST("/import", imports.ImportPurchases).
			GET("/:id", purchases.Get).
			PUT("/:id", purchases.Update).
			DELETE("/:id", purchases.Delete),

		NewDomainGroup("sales", "/sales").
			POST("", sales.Create).
			GET("", sales.List).
			POST("/bulk", sales.BulkCreate).
			POST("/import", imports.ImportSales).
			GET("/:id", sales.Get).
			PUT("/:id", sales.Update).
			DELETE("/:id", sales.Delete).
			PATCH("/:id/shipping-status", sales.UpdateShippingStatus).
			POST("/:id/revenue", sales.RegisterRevenue).
			POST("/:id/refunds", sales.Refund),

		NewDomainGroup("customers", "/customers").
			POST("", customers.GetOrCreate).
			GET("", customers.List).
			GET("/:id", customers.Get).
			PUT("/:id", customers.Update).
			DELETE("/:id", customers.Delete).
			GET("/:id/spend", customers.Spend),

		NewDomainGroup("expenses", "/expenses").
			POST("", money.CreateExpense).
			GET("", money.ListExpenses).
			GET("/:id", money.GetExpense).
			PUT("/:id", money.UpdateExpense).
			DELETE("/:id", money.DeleteExpense),

		NewDomainGroup("payments", "/payments").
			POST("", money.CreatePayment).
			GET("", money.ListPayments).
			GET("/:id", money.GetPayment).
			PUT("/:id", money.UpdatePayment).
			DELETE("/:id", money.DeletePayment),

		NewDomainGroup("finance", "/finance").
			GET("/transactions", money.ListTransactions).
			GET("/summary", money.Summary).
			POST("/income", money.AddManualIncome).
			POST("/expense", money.AddManualExpense),
	}
}
