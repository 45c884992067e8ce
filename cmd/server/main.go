package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/fitsync/internal/logging"
	"github.com/iudanet/fitsync/internal/server"
	"github.com/iudanet/fitsync/internal/server/config"
	"github.com/iudanet/fitsync/internal/server/handlers"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		return err
	}

	// Show version and exit if requested
	if cfg.Version {
		printVersion()
		return nil
	}

	// Выпуск токена для разработки и ручной настройки клиентов
	if cfg.IssueToken != "" {
		token, expiresAt, err := handlers.IssueToken(handlers.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			TokenTTL: cfg.TokenTTL,
		}, cfg.IssueToken)
		if err != nil {
			return err
		}
		fmt.Println(token)
		fmt.Fprintf(os.Stderr, "Token for %s expires at %s\n", cfg.IssueToken, expiresAt.Format("2006-01-02 15:04:05 MST"))
		return nil
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		JSON:   cfg.LogJSON,
		Output: os.Stderr,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = closeLog()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("fitsync server starting",
		"version", Version,
		"driver", cfg.Driver,
		"addr", cfg.Addr,
	)

	return server.Run(ctx, cfg, logger)
}

func printVersion() {
	fmt.Printf("fitsync server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
