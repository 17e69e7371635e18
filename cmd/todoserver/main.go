package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/ent0n29/todolist/internal/app"
	"github.com/ent0n29/todolist/internal/config"
	"github.com/ent0n29/todolist/internal/logx"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatal("load .env", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config error", "err", err)
	}

	logger, err := logx.New(os.Stderr, "todoserver", cfg.LogLevel)
	if err != nil {
		log.Fatal("logger init failed", "err", err)
	}

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	res, err := app.Build(initCtx, cfg, logger)
	initCancel()
	if err != nil {
		logger.Fatal("startup failed", "err", err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("cleanup failed", "err", err)
		}
	}()

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           res.API.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	go func() {
		logger.Info("server listening", "addr", cfg.BindAddr, "store", res.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen error", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "err", err)
		_ = httpServer.Close()
	}

	logger.Info("shutdown complete")
}
