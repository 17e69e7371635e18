package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ent0n29/todolist/internal/client"
	"github.com/ent0n29/todolist/internal/logx"
	"github.com/ent0n29/todolist/internal/ui"
)

func main() {
	logPath := flag.String("log", filepath.Join(os.TempDir(), "todoclient.log"), "log file path")
	level := flag.String("log-level", "info", "log level (debug|info|warn|error)")
	flag.Parse()

	if err := run(*logPath, *level); err != nil {
		fmt.Fprintf(os.Stderr, "todoclient: %v\n", err)
		os.Exit(1)
	}
}

func run(logPath, level string) error {
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	logger, err := logx.New(f, "todoclient", level)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	api := client.NewClient(client.DefaultBaseURL)
	logger.Info("client started", "api", api.BaseURL())
	return ui.Run(ctx, api, logger)
}
