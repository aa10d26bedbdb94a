package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	applog "github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/infrastructure/singleton"
	"github.com/ontariodoctor/backend/internal/infrastructure/tracing"
	"github.com/ontariodoctor/backend/internal/wire"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, MCP endpoint and corpus watcher",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := applog.GetLogger()
	cfg := config.NewConfig()

	// 端口检查：已有实例在运行时直接退出
	listener, err := singleton.CheckAndLock(cfg.Server.HTTPPort)
	if err != nil {
		return fmt.Errorf("port check failed: %w", err)
	}
	if listener == nil {
		logger.Info("Another instance is already running, exiting", "port", cfg.Server.HTTPPort)
		return nil
	}
	// 关闭临时 listener，实际监听由 HTTP 服务器负责
	_ = listener.Close()

	shutdownTracing, err := tracing.Init(cmd.Context(), &cfg.Telemetry)
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("Failed to flush traces", "error", err)
		}
	}()

	app, cleanup, err := wire.InitializeAll()
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer cleanup()

	errCh, err := app.Start()
	if err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("Shutting down application...")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server exited", "error", err)
		}
	}

	if err := app.Stop(); err != nil {
		logger.Error("Error during application shutdown", "error", err)
		return err
	}
	logger.Info("Application stopped")
	return nil
}
