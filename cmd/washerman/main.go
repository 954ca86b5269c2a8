// Package main запускает HTTP-сервер панели работника прачечной.
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
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/washerman-panel/internal/config"
	"github.com/mmeshcher/washerman-panel/internal/gateway"
	"github.com/mmeshcher/washerman-panel/internal/handler"
	"github.com/mmeshcher/washerman-panel/internal/middleware"
	"github.com/mmeshcher/washerman-panel/internal/service"
	"github.com/mmeshcher/washerman-panel/internal/session"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	sessions := session.NewStore(cfg.SessionFile)
	if err := sessions.Load(); err != nil {
		sugar.Fatalw("session restore error", "error", err.Error())
	}

	gw := gateway.NewClient(cfg.BackendAddress, cfg.RequestTimeout, sessions)

	svc := service.NewService(gw, sessions, logger)

	authMiddleware := middleware.NewAuthMiddleware(cfg.SessionSecret, sessions)

	h, err := handler.NewHandler(svc, logger, authMiddleware)
	if err != nil {
		sugar.Fatalw("handler initialization error", "error", err.Error())
	}

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting washerman panel", "addr", cfg.RunAddress, "backend", cfg.BackendAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
