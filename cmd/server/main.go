package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"online_shop/internal/pkg/config"
	"online_shop/internal/pkg/middleware"
	"online_shop/internal/pkg/push"
	"online_shop/internal/pkg/registry"
	"online_shop/internal/pkg/uploader"
	"online_shop/internal/pkg/worker"
	"online_shop/pkg/database"
	"online_shop/pkg/logger"

	// 模块自注册
	_ "online_shop/internal/domain/cart"
	_ "online_shop/internal/domain/checkout"
	_ "online_shop/internal/domain/common"
	_ "online_shop/internal/domain/order"
	_ "online_shop/internal/domain/product"

	_ "online_shop/docs" // swag 生成的 API 文档

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Online Shop API
// @version 1.0
// @description 商城后端：商品、购物车、结算与支付回调
// @BasePath /
func main() {
	config.LoadConfig()

	logger.InitLogger(config.GlobalConfig.App.Debug)
	defer logger.Sync()

	gin.SetMode(config.GlobalConfig.Server.Mode)

	db := database.InitDatabase()
	rdb := database.InitRedis()

	// 每 30 秒上报一次连接池水位
	database.StartPoolMonitor(db, 30*time.Second)

	// 推送服务是可选依赖：凭证缺失时降级为不推送，不阻塞启动
	if pushService, err := push.NewAliyunPushService(); err != nil {
		logger.Log.Warn("Push service unavailable, notifications disabled", zap.Error(err))
	} else {
		worker.InitGlobalPool(pushService)
	}

	if err := uploader.InitUploader(); err != nil {
		logger.Log.Warn("OSS uploader unavailable, file upload disabled", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.RateLimitMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	moduleCtx := &registry.ModuleContext{
		DB:     db,
		Redis:  rdb,
		Router: r,
		Config: &config.GlobalConfig,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		logger.Log.Fatal("Failed to init modules", zap.Error(err))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + config.GlobalConfig.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("Server starting", zap.String("port", config.GlobalConfig.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 优雅退出：等待在途请求完成
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Forced shutdown", zap.Error(err))
	}
	logger.Log.Info("Server stopped")
}
