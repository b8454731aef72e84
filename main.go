package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/validators"
	"github.com/FACorreiaa/greengrove-accounts/internal/pkg/config"
	"github.com/FACorreiaa/greengrove-accounts/internal/pkg/logger"
	"github.com/FACorreiaa/greengrove-accounts/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.LogLevel, zap.String("service", "greengrove-accounts")); err != nil {
		return err
	}
	l := logger.Log
	defer func() { _ = l.Sync() }()
	zap.ReplaceGlobals(l)

	otelShutdown, err := server.InitObservability(cfg.Observability, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			l.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	if err := validators.RegisterBindings(); err != nil {
		return err
	}

	srv, err := server.New(context.Background(), cfg, l)
	if err != nil {
		return err
	}
	defer srv.Close()

	gin.SetMode(gin.ReleaseMode)
	srv.SetRouter(server.SetupRouter(srv.GetDBPool(), cfg, l))

	server.StartPprofServer(cfg.Observability.PprofAddr, l)

	httpServer := srv.HTTPServer()

	done := make(chan struct{})
	go server.GracefulShutdown(httpServer, l, done)

	l.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("Server error", zap.Error(err))
		return err
	}

	<-done
	l.Info("Graceful shutdown complete")
	return nil
}
