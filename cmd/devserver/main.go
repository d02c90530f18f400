package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/run"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-tracker/internal/devserver"
	"github.com/noah-isme/academic-tracker/internal/service"
	"github.com/noah-isme/academic-tracker/pkg/config"
	"github.com/noah-isme/academic-tracker/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New("devserver", cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	srv, err := devserver.New(cfg.DevServer, logr, metrics)
	if err != nil {
		logr.Fatal("failed to build dev server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.DevServer.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var g run.Group
	g.Add(func() error {
		logr.Sugar().Infow("dev server starting", "addr", httpServer.Addr, "env", cfg.Env, "metrics", cfg.Metrics.Enabled)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logr.Warn("dev server shutdown", zap.Error(err))
		}
	})
	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	if err := g.Run(); err != nil {
		var sig run.SignalError
		if errors.As(err, &sig) {
			logr.Info("dev server stopped", zap.String("signal", sig.Signal.String()))
			return
		}
		logr.Fatal("dev server failed", zap.Error(err))
	}
}
