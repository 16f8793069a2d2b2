package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"multipos/internal/config"
	"multipos/internal/handler"
	"multipos/internal/infra"
	"multipos/internal/middleware"
	"multipos/internal/model"
	"multipos/internal/repository"
	"multipos/internal/service"
)

// Deps are the process-wide collaborators built in main.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client // optional
	Alerts service.AlertEnqueuer
	MailCB *infra.CircuitBreaker
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// Background goroutines owned by the router stop when ctx is cancelled.
func New(ctx context.Context, cfg *config.Config, d Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	apiLimiter := middleware.APIRateLimiter(1000, time.Minute)
	loginLimiter := middleware.LoginRateLimiter()
	go apiLimiter.StartPurge(5*time.Minute, ctx.Done())
	go loginLimiter.StartPurge(5*time.Minute, ctx.Done())

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware())

	// ── Repositories ─────────────────────────────────────────────────────────
	shopRepo := repository.NewShopRepository(d.DB)
	categoryRepo := repository.NewCategoryRepository(d.DB)
	productRepo := repository.NewProductRepository(d.DB)
	userRepo := repository.NewUserRepository(d.DB)
	inventoryRepo := repository.NewInventoryRepository(d.DB)
	movementRepo := repository.NewStockMovementRepository(d.DB)
	priceRepo := repository.NewPriceHistoryRepository(d.DB)
	saleRepo := repository.NewSaleRepository(d.DB)
	reportRepo := repository.NewReportRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	statusCache := service.NewStatusCache(d.Redis, cfg.StatusCacheTTL)

	authSvc := service.NewAuthService(userRepo, cfg)
	shopSvc := service.NewShopService(shopRepo, inventoryRepo, saleRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	productSvc := service.NewProductService(productRepo, categoryRepo, shopRepo, inventoryRepo, movementRepo, statusCache)
	inventorySvc := service.NewInventoryService(service.InventoryDeps{
		Inventory: inventoryRepo,
		Movements: movementRepo,
		Prices:    priceRepo,
		Products:  productRepo,
		Shops:     shopRepo,
		Cache:     statusCache,
		Alerts:    d.Alerts,
	})
	saleSvc := service.NewSaleService(saleRepo, inventoryRepo, movementRepo, statusCache, d.Alerts)
	reportSvc := service.NewReportService(reportRepo, inventoryRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	shopsH := handler.NewShopsHandler(shopSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	productsH := handler.NewProductsHandler(productSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	salesH := handler.NewSalesHandler(saleSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(d.DB, d.Redis, d.MailCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	anyRole := middleware.RequireRole(model.RoleCashier, model.RoleManager, model.RoleAdmin)
	managers := middleware.RequireRole(model.RoleManager, model.RoleAdmin)
	admins := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		sales := v1.Group("/sales")
		{
			sales.POST("", anyRole, salesH.Create)
			sales.GET("", anyRole, salesH.List)
			sales.GET("/:id", anyRole, salesH.Get)
			sales.POST("/:id/void", managers, salesH.Void)
		}

		inv := v1.Group("/inventory")
		{
			inv.GET("", anyRole, inventoryH.List)
			inv.GET("/:id", anyRole, inventoryH.Get)
			inv.GET("/:id/status", anyRole, inventoryH.Status)
			inv.GET("/:id/movements", managers, inventoryH.ListMovements)
			inv.GET("/:id/price-history", managers, inventoryH.ListPriceHistory)
			inv.POST("", managers, inventoryH.Create)
			inv.PATCH("/:id", managers, inventoryH.Update)
			inv.POST("/:id/movements", managers, inventoryH.RecordMovement)
		}

		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/:id", anyRole, productsH.Get)
		products := v1.Group("/products", admins)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
		}

		v1.GET("/categories", anyRole, categoriesH.List)
		categories := v1.Group("/categories", admins)
		{
			categories.POST("", categoriesH.Create)
			categories.PUT("/:id", categoriesH.Update)
			categories.DELETE("/:id", categoriesH.Deactivate)
		}

		v1.GET("/shops", anyRole, shopsH.List)
		v1.GET("/shops/:id", anyRole, shopsH.Get)
		shops := v1.Group("/shops", admins)
		{
			shops.POST("", shopsH.Create)
			shops.PUT("/:id", shopsH.Update)
			shops.DELETE("/:id", shopsH.Delete)
		}

		users := v1.Group("/users", admins)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
		}

		reports := v1.Group("/reports", managers)
		{
			reports.GET("/profit-loss", reportsH.ProfitLoss)
			reports.GET("/low-stock", reportsH.LowStock)
			reports.GET("/dashboard", reportsH.Dashboard)
		}
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
