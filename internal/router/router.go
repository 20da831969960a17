package router

import (
	"export-go/internal/config"
	"export-go/internal/export"
	"export-go/internal/handler"
	"export-go/internal/middleware"
	"export-go/internal/repository"
	"export-go/internal/service"
	"export-go/internal/utils"
	"export-go/pkg/redis_limiter"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRouter 设置路由
func SetupRouter(
	cfg *config.Config,
	jwtManager *utils.JWTManager,
	logger *logrus.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	registry *export.Registry,
) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg))

	// 健康检查
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "记录管理与CSV导出 API",
			"version": "1.0.0",
		})
	})

	// 字段选择弹窗的前端脚本
	r.Static("/static", cfg.Server.StaticDir)

	// 初始化Repository
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// 初始化Service
	authService := service.NewAuthService(userRepo, jwtManager, cfg)
	customerService := service.NewCustomerService(customerRepo)
	orderService := service.NewOrderService(orderRepo)
	exportService := service.NewExportService(db, registry, logger)

	// 初始化Handler
	authHandler := handler.NewAuthHandler(authService)
	customerHandler := handler.NewCustomerHandler(customerService)
	orderHandler := handler.NewOrderHandler(orderService)

	// 导出并发限制器(未配置Redis时不启用)
	exportHandler := handler.NewExportHandler(exportService, nil)
	if redisClient != nil {
		limiter := redis_limiter.NewRedisLimiter(
			redisClient,
			logger,
			cfg.Export.MaxConcurrent,
			"export_slots:",
			cfg.Export.GetSlotTTL(),
		)
		exportHandler = handler.NewExportHandler(exportService, limiter)
	}

	// API路由组
	api := r.Group("/api")
	{
		// 公开路由
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 认证路由
		authorized := api.Group("")
		authorized.Use(middleware.AuthMiddleware(jwtManager))
		{
			// 用户信息
			authorized.GET("/me", authHandler.GetMe)
			authorized.POST("/logout", authHandler.Logout)

			// 记录管理与导出只对管理员开放
			adminGroup := authorized.Group("")
			adminGroup.Use(middleware.AdminMiddleware())
			{
				// 客户管理
				adminGroup.GET("/customers", customerHandler.ListCustomers)
				adminGroup.GET("/customers/:id", customerHandler.GetCustomer)

				// 订单管理
				adminGroup.GET("/orders", orderHandler.ListOrders)
				adminGroup.GET("/orders/:id", orderHandler.GetOrder)

				// CSV导出
				adminGroup.GET("/export/:entity/fields", exportHandler.FieldChoices)
				adminGroup.POST("/export/:entity", exportHandler.Export)
			}
		}
	}

	return r
}
