package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appcfg "github.com/hisui/usi-bridge/internal/config"
	"github.com/hisui/usi-bridge/internal/obslog"
	"github.com/hisui/usi-bridge/internal/server"
	svcengine "github.com/hisui/usi-bridge/internal/service/engine"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer logger.Sync()

	svc := svcengine.NewService(svcengine.Config{
		EnginePath:       cfg.EnginePath,
		UseMock:          cfg.UseMockEngine,
		OptionsFile:      cfg.EngineOptionsFile,
		HandshakeTimeout: time.Duration(cfg.HandshakeTimeoutMs) * time.Millisecond,
		DefaultThinkMs:   cfg.DefaultThinkMs,
	}, logger)

	srv := server.New(cfg.APIAddr, svc, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	svc.Close()
}
