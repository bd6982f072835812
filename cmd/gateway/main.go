// file: cmd/gateway/main.go

package main

import (
	"RecordAegis/aegauth"
	"RecordAegis/aegconf"
	"RecordAegis/internal/adapter/datasource/sqlite"
	"RecordAegis/internal/aegmiddleware"
	"RecordAegis/internal/aegobserve"
	"RecordAegis/internal/service"
	"RecordAegis/internal/service/catalog"
	"RecordAegis/internal/transport/http/router"
	"RecordAegis/internal/transport/rpc"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const version = "v1.0.0"

func defaultConfigPath() string {
	if p := os.Getenv("AEGIS_CONFIG"); p != "" {
		return p
	}
	return filepath.Join("configs", "config.yaml")
}

func main() {
	configPath := flag.String("config", defaultConfigPath(), "配置文件路径")
	flag.Parse()

	loader := aegconf.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		// 在日志系统完全初始化前，使用标准 log
		log.Fatalf("CRITICAL: %v", err)
	}

	logger, err := aegobserve.InitLogger(cfg.Server.LogLevel, cfg.Server.LogFormat)
	if err != nil {
		log.Fatalf("CRITICAL: 初始化日志失败: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, loader, logger); err != nil {
		logger.Error("程序异常退出", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("程序即将退出。")
}

func run(cfg *aegconf.Config, loader *aegconf.Loader, logger *zap.Logger) error {
	logger.Info("RecordAegis starting up", zap.String("version", version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.New(catalog.DefaultCollections()...)
	if err != nil {
		return fmt.Errorf("构建集合目录失败: %w", err)
	}

	if dir := filepath.Dir(cfg.Storage.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建数据目录 '%s' 失败: %w", dir, err)
		}
	}
	store, err := sqlite.Open(ctx, cfg.Storage.Path, cat, logger, sqlite.Options{ColumnCacheTTL: cfg.Storage.ColumnCacheTTL})
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("正在关闭数据库连接...")
		if err := store.Close(); err != nil {
			logger.Error("关闭数据库时发生错误", zap.Error(err))
		}
	}()
	if err := store.EnsureCollections(ctx); err != nil {
		return err
	}
	if cfg.Storage.SeedDemo > 0 {
		if _, err := store.SeedDemoPatients(ctx, cfg.Storage.SeedDemo); err != nil {
			return err
		}
	}

	limits := aegconf.NewQueryLimits(cfg.Query)
	loader.Watch(limits, logger)

	records, err := service.NewRecordService(cat, store, limits, logger)
	if err != nil {
		return err
	}
	logger.Info("服务层: RecordService 初始化完成")

	deps := router.Dependencies{Records: records, Logger: logger}
	if cfg.Auth.Enabled {
		if err := aegauth.InitUserTable(ctx, store.DB()); err != nil {
			return err
		}
		created, err := aegauth.EnsureBootstrapUser(ctx, store.DB(), cfg.Auth.BootstrapUser, cfg.Auth.BootstrapPassword)
		if err != nil {
			return err
		}
		if created {
			logger.Warn("已创建初始管理员账户，请尽快修改密码", zap.String("user", cfg.Auth.BootstrapUser))
		}
		if deps.Auth, err = aegauth.NewAuthenticator(store.DB(), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger); err != nil {
			return err
		}
		deps.LoginLock = aegmiddleware.NewLoginFailureLock(5, 15*time.Minute, logger)
	}
	if cfg.RateLimit.Enabled {
		deps.Limiter = aegmiddleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 15*time.Minute, logger)
	}

	aegobserve.Register()
	aegobserve.EnablePprof(cfg.Server.PprofAddr, logger)

	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("开始监听HTTP请求", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP服务启动失败: %w", err)
		}
		return nil
	})

	if cfg.Server.GRPCPort > 0 {
		grpcServer, reporter := rpc.NewServer(store, 10*time.Second, logger)
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			return fmt.Errorf("gRPC 服务监听端口 %d 失败: %w", cfg.Server.GRPCPort, err)
		}
		g.Go(func() error {
			reporter.Run(gctx)
			return nil
		})
		g.Go(func() error {
			logger.Info("gRPC 健康检查服务已启动", zap.String("address", lis.Addr().String()))
			return grpcServer.Serve(lis)
		})
		g.Go(func() error {
			<-gctx.Done()
			grpcServer.GracefulStop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("收到停机信号，准备优雅关闭...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP服务优雅关闭失败: %w", err)
		}
		logger.Info("HTTP服务已成功关闭。")
		return nil
	})

	return g.Wait()
}
