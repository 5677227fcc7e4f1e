package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qywxbot/tools/ioc"
	"qywxbot/tools/logger"
	"qywxbot/tools/middleware"
	"qywxbot/wecom/config"
	"qywxbot/wecom/pkg/mcptool"
	"qywxbot/wecom/pkg/notice"
	"qywxbot/wecom/pkg/notice/api"
	"qywxbot/wecom/pkg/notice/impl"
)

var version = "dev"

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 创建日志记录器
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Starting WeCom robot service %s, mode=%s, key=%s", version, cfg.RunMode, cfg.MaskedKey())

	svc := impl.NewNoticeImpl(cfg, log)

	if cfg.RunMode == config.RunModeMCP {
		if err := mcptool.NewServer(svc, version, log).ServeStdio(); err != nil {
			log.Fatal("MCP server stopped: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := runHTTP(cfg, svc, log); err != nil {
		log.Fatal("%v", err)
		os.Exit(1)
	}
	log.Info("Server exited")
}

func runHTTP(cfg *config.Config, svc notice.Service, log *logger.Logger) error {
	engine := cfg.Application.GinServer()
	engine.Use(middleware.RequestID(), middleware.AccessLog(log))

	// 初始化 IOC 容器
	apis := ioc.NewContainer("apiContainer")
	apis.RegisterContainer("health", api.NewHealthHandler(engine))
	apis.RegisterContainer(notice.AppName, api.NewNoticeHandler(svc, cfg.Application.GinRootRouter()))
	if err := apis.Init(); err != nil {
		return fmt.Errorf("failed to init ioc: %w", err)
	}

	// 配置HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
