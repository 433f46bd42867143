package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"dienstplan/backend/config"
	"dienstplan/backend/internal/api/handler"
	"dienstplan/backend/internal/api/router"
	"dienstplan/backend/internal/repository"
	"dienstplan/backend/internal/service"
	"dienstplan/backend/pkg/database"
	applogger "dienstplan/backend/pkg/logger"
	"dienstplan/backend/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化持久化网关（postgres 或本地 JSON 文件）
	var repo *repository.Repository
	var closeDB func()

	switch cfg.Storage.Driver {
	case "postgres":
		db, err := database.NewDB(&cfg.Database, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		logger.Info("数据库连接成功")

		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}

		repo = repository.NewPostgresRepository(db, cfg.Schedule.DefaultWeeks, logger)
		closeDB = func() { sqlDB.Close() }
	case "file":
		repo = repository.NewFileRepository(cfg.Storage.FilePath, cfg.Schedule.DefaultWeeks, logger)
		closeDB = func() {}
	default:
		logger.Fatal("未知的存储驱动", zap.String("driver", cfg.Storage.Driver))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，限流功能将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 依赖注入: Repository → Service → Handler
	svc := service.NewService(cfg, repo, logger)
	h := handler.NewHandler(svc)

	// 6. 启动时加载一次排班文档，失败时保留空白默认文档继续运行
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := svc.Schedule.Load(loadCtx); err != nil {
		logger.Warn("启动加载排班文档失败，使用默认文档", zap.Error(err))
	}
	loadCancel()

	// 7. 初始化路由
	engine := router.Setup(cfg, h, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	closeDB()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
