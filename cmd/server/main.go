package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simplelink/internal/config"
	"simplelink/internal/handler"
	"simplelink/internal/i18n"
	"simplelink/internal/middleware"
	"simplelink/internal/repository"
	"simplelink/internal/service"
	"simplelink/internal/shortcode"
	"simplelink/pkg/database"
	auth "simplelink/pkg/jwt"
	"simplelink/pkg/logger"
	"simplelink/pkg/redis"

	_ "simplelink/docs"

	"github.com/gin-gonic/gin"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           simplelink API
// @version         1.0
// @description     短链接生成与点击统计服务
// @BasePath        /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description 格式: Bearer {token}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "配置加载失败:", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.Options{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	defer func() {
		if err := logger.Logger.Sync(); err != nil {
			fmt.Println("日志同步失败:", err)
		}
	}()
	sugaredLogger := zap.S()

	db, err := database.Open(database.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Name:         cfg.Database.Name,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		Logger:       logger.Logger,
	})
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	sugaredLogger.Infof("✅ 数据库连接成功 (%s)", cfg.Database.Driver)

	if err := database.Migrate(db); err != nil {
		sugaredLogger.Fatalf("数据库迁移失败: %v", err)
	}
	sugaredLogger.Info("✅ 数据库迁移成功")

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redis.NewRedisClient(&redis.Options{
			Host:        cfg.Cache.Host,
			Port:        cfg.Cache.Port,
			Password:    cfg.Cache.Password,
			DB:          cfg.Cache.DB,
			PoolSize:    cfg.Cache.PoolSize,
			DialTimeout: cfg.Cache.DialTimeoutDuration(),
			IOTimeout:   cfg.Cache.IOTimeoutDuration(),
		})
		if err != nil {
			sugaredLogger.Warnf("缓存连接失败，将直接查询数据库: %v", err)
			rdb = nil
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
				}
			}()
			sugaredLogger.Info("✅ 缓存连接成功")
		}
	}

	store := repository.NewStore(db)
	cache := repository.NewLinkCache(rdb,
		time.Duration(cfg.Cache.TTL)*time.Second,
		time.Duration(cfg.Cache.NegativeTTL)*time.Second,
	)

	// 初始化并启动短码生成器
	shortcodeGenerator := shortcode.NewGenerator(sugaredLogger)
	shortcodeGenerator.Start()
	defer shortcodeGenerator.Stop()
	sugaredLogger.Info("✅ 短码生成器已启动")

	tokenManager := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)

	linkService := service.NewLinkService(store, cache, shortcodeGenerator, sugaredLogger)
	statsService := service.NewStatsService(store, cfg.Location(), sugaredLogger)
	authService := service.NewAuthService(store, tokenManager, service.AuthOptions{
		RequireSetupToken: cfg.Auth.RequireSetupToken,
		SetupTokenFile:    cfg.Auth.SetupTokenFile,
	}, sugaredLogger)

	if _, err := authService.EnsureSetupToken(context.Background()); err != nil {
		sugaredLogger.Errorf("生成管理员引导令牌失败: %v", err)
	}

	recorder := service.NewClickRecorder(statsService, service.RecorderOptions{
		QueueSize:    cfg.Stats.QueueSize,
		Workers:      cfg.Stats.Workers,
		MaxRetries:   cfg.Stats.RetryLimit(),
		RetryBackoff: cfg.Stats.RetryBackoffDuration(),
	}, sugaredLogger)

	reconciler, err := statsService.StartReconciler(cfg.Stats.ReconcileCron)
	if err != nil {
		sugaredLogger.Fatalf("对账任务启动失败: %v", err)
	}

	translator, err := i18n.New(cfg.I18n.DefaultLanguage)
	if err != nil {
		sugaredLogger.Fatalf("语言包加载失败: %v", err)
	}

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	router := gin.New()
	// 未配置时不信任任何代理，ClientIP 取连接地址
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		sugaredLogger.Fatalf("trusted_proxies 配置无效: %v", err)
	}
	router.Use(middleware.GinZapLogger(logger.Logger))
	router.Use(middleware.I18nMiddleware(translator))
	router.Use(middleware.ErrorHandler(logger.Logger))
	router.Use(middleware.GinZapRecovery(logger.Logger, true))
	router.Use(middleware.CorsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handler.RegisterRoutes(router,
		handler.NewShortLinkHandler(linkService, statsService, recorder, store),
		handler.NewAuthHandler(authService),
		middleware.AuthMiddleware(tokenManager),
		middleware.RateLimit(&cfg.RateLimit),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
		sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugaredLogger.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugaredLogger.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		sugaredLogger.Errorf("HTTP 服务关闭失败: %v", err)
	}
	if err := recorder.Stop(ctx); err != nil {
		sugaredLogger.Errorf("点击队列未能排空: %v", err)
	}
	<-reconciler.Stop().Done()
	sugaredLogger.Info("服务已退出")
}
