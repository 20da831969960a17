package main

import (
	"log"
	"os"

	"export-go/internal/config"
	"export-go/internal/export"
	"export-go/internal/models"
	"export-go/internal/repository"
	"export-go/internal/router"
	"export-go/internal/service"
	"export-go/internal/utils"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

func main() {
	// 加载配置(从项目根目录读取)
	cfg, err := config.LoadConfig("./config/config.yaml")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化日志
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	// 初始化数据库
	if err := models.InitDB(cfg); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		log.Fatalf("迁移数据库失败: %v", err)
	}
	db := models.GetDB()

	// 初始化Redis(未配置Host时不启用导出并发限制)
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddress(),
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
	} else {
		logger.Warn("未配置Redis,导出并发限制已禁用")
	}

	// 注册可导出实体(块大小无效会在这里直接失败)
	registry, err := export.NewRegistry(cfg.Export.ChunkSize)
	if err != nil {
		log.Fatalf("创建导出注册表失败: %v", err)
	}
	for _, entity := range models.ExportEntities() {
		if err := registry.Register(entity); err != nil {
			log.Fatalf("注册导出实体失败: %v", err)
		}
	}

	// 初始化工具
	jwtManager := utils.NewJWTManager(
		cfg.JWT.SecretKey,
		cfg.JWT.Algorithm,
		cfg.JWT.GetExpireDuration(),
	)

	// 初始化管理员账户
	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, jwtManager, cfg)
	if err := authService.InitAdmin(); err != nil {
		logger.Warnf("初始化管理员失败: %v", err)
	}

	// 设置路由
	r := router.SetupRouter(cfg, jwtManager, logger, db, redisClient, registry)

	// 启动服务器
	addr := cfg.Server.GetAddress()
	logger.Infof("服务器启动在 %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务器失败: %v", err)
	}
}
