package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/beyyuanzhang/tfoc/internal/config"
	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"github.com/beyyuanzhang/tfoc/internal/ims/handler"
	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"github.com/beyyuanzhang/tfoc/internal/ims/service"
	"github.com/beyyuanzhang/tfoc/internal/middleware"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting tfoc-ims service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Tag{},
		&entity.Prototype{},
		&entity.Release{},
		&entity.ReleaseMaterial{},
		&entity.ReleaseColorMedia{},
		&entity.SKU{},
		&entity.SerialNumber{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	// jsonb 查询用索引
	db.Exec("CREATE INDEX IF NOT EXISTS idx_releases_size_ids ON releases USING gin (size_ids)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_releases_color_ids ON releases USING gin (color_ids)")

	// 初始化 Redis
	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis not available, caching and refresh tokens degraded", zap.Error(err))
	}

	// 初始化各层
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services)

	// 初始管理员账号
	adminEmail := config.GetEnvOrDefault("ADMIN_EMAIL", "")
	adminPassword := config.GetEnvOrDefault("ADMIN_PASSWORD", "")
	if adminEmail != "" && adminPassword != "" {
		if err := services.User.EnsureAdmin(context.Background(), adminEmail, adminPassword); err != nil {
			zapLogger.Warn("Failed to ensure admin user", zap.Error(err))
		}
	}

	// 初始化 Gin
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	// 启动服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证 (无需登录)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的接口
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			// 当前用户
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 用户管理（仅主理人）
			users := authorized.Group("/users")
			users.Use(middleware.Authorize(middleware.CapUserManage))
			{
				users.GET("", h.User.List)
				users.POST("", h.User.Create)
				users.GET("/:id", h.User.Get)
				users.PUT("/:id", h.User.Update)
				users.DELETE("/:id", h.User.Delete)
			}

			// 标签
			tags := authorized.Group("/tags")
			{
				tags.GET("", middleware.Authorize(middleware.CapRead), h.Tag.List)
				tags.GET("/:id", middleware.Authorize(middleware.CapRead), h.Tag.Get)
				tags.POST("", middleware.Authorize(middleware.CapCatalogWrite), h.Tag.Create)
				tags.PUT("/:id", middleware.Authorize(middleware.CapCatalogWrite), h.Tag.Update)
				tags.DELETE("/:id", middleware.Authorize(middleware.CapCatalogDrop), h.Tag.Delete)
			}

			// 原型
			prototypes := authorized.Group("/prototypes")
			{
				prototypes.GET("", middleware.Authorize(middleware.CapRead), h.Prototype.List)
				prototypes.GET("/:id", middleware.Authorize(middleware.CapRead), h.Prototype.Get)
				prototypes.POST("", middleware.Authorize(middleware.CapCatalogWrite), h.Prototype.Create)
				prototypes.PUT("/:id", middleware.Authorize(middleware.CapCatalogWrite), h.Prototype.Update)
				prototypes.DELETE("/:id", middleware.Authorize(middleware.CapCatalogDrop), h.Prototype.Delete)
			}

			// 发售
			releases := authorized.Group("/releases")
			{
				releases.GET("", middleware.Authorize(middleware.CapRead), h.Release.List)
				releases.GET("/:id", middleware.Authorize(middleware.CapRead), h.Release.Get)
				releases.POST("", middleware.Authorize(middleware.CapCatalogWrite), h.Release.Create)
				releases.PUT("/:id", middleware.Authorize(middleware.CapCatalogWrite), h.Release.Update)
				releases.DELETE("/:id", middleware.Authorize(middleware.CapCatalogDrop), h.Release.Delete)
				releases.POST("/:id/generate-skus", middleware.Authorize(middleware.CapCatalogWrite), h.Release.GenerateSKUs)
				releases.GET("/:id/export", middleware.Authorize(middleware.CapExport), h.Release.Export)
			}

			// SKU
			skus := authorized.Group("/skus")
			{
				skus.GET("", middleware.Authorize(middleware.CapRead), h.SKU.List)
				skus.GET("/code/:code", middleware.Authorize(middleware.CapRead), h.SKU.GetByCode)
				skus.GET("/:id", middleware.Authorize(middleware.CapRead), h.SKU.Get)
				skus.GET("/:id/status-breakdown", middleware.Authorize(middleware.CapRead), h.SKU.StatusBreakdown)
				skus.PUT("/:id/quantity", middleware.Authorize(middleware.CapCatalogWrite), h.SKU.UpdateQuantity)
				skus.POST("/:id/reconcile", middleware.Authorize(middleware.CapCatalogWrite), h.SKU.Reconcile)
				skus.DELETE("/:id", middleware.Authorize(middleware.CapCatalogDrop), h.SKU.Delete)
			}

			// 序列号
			serials := authorized.Group("/serials")
			{
				serials.GET("", middleware.Authorize(middleware.CapRead), h.Serial.List)
				serials.GET("/code/:code", middleware.Authorize(middleware.CapRead), h.Serial.GetByCode)
				serials.GET("/:id", middleware.Authorize(middleware.CapRead), h.Serial.Get)
				serials.PATCH("/:id", middleware.Authorize(middleware.CapSerialStatus), h.Serial.Update)
			}

			// 上传
			uploads := authorized.Group("/uploads")
			uploads.Use(middleware.Authorize(middleware.CapCatalogWrite))
			{
				uploads.POST("", h.Upload.Upload)
				uploads.GET("/url", h.Upload.Download)
				uploads.DELETE("", h.Upload.Remove)
			}
		}
	}
}
