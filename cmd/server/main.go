package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/blogapi/internal/config"
	"github.com/iudanet/blogapi/internal/logging"
	"github.com/iudanet/blogapi/internal/server"
	"github.com/iudanet/blogapi/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "Path to SQLite database (overrides config)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(*configPath, *addr, *dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr, dbPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// флаги перекрывают файл и окружение
	if addr != "" || dbPath != "" {
		if addr != "" {
			cfg.Server.HTTPAddr = addr
		}
		if dbPath != "" {
			cfg.Database.Path = dbPath
		}
		if err := cfg.Finalize(); err != nil {
			return err
		}
	}

	logger := logging.New(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", slog.Any("error", err))
		}
	}()

	srv, err := server.New(cfg, store, logger, Version)
	if err != nil {
		return err
	}

	if cfg.Seed.Path != "" {
		res, err := srv.Seed(ctx, cfg.Seed.Path)
		if err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
		logger.Info("Database seeded",
			slog.Int("users", res.Users),
			slog.Int("categories", res.Categories),
			slog.Int("tags", res.Tags),
			slog.Int("posts", res.Posts),
		)
	}

	logger.Info("Blog API server starting",
		slog.String("version", Version),
		slog.String("db", cfg.Database.Path),
	)

	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("Blog API Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
