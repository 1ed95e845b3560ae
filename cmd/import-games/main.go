// Package main provides the batch importer that archives a directory of game
// records in PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hanabi-json/internal/config"
	"github.com/cory-johannsen/hanabi-json/internal/game"
	"github.com/cory-johannsen/hanabi-json/internal/importer"
	"github.com/cory-johannsen/hanabi-json/internal/observability"
	"github.com/cory-johannsen/hanabi-json/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	sourceDir := flag.String("source", "", "directory of game records to import")
	flag.Parse()

	if *sourceDir == "" {
		fmt.Fprintln(os.Stderr, "usage: import-games -source <dir> [-config <file>]")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	decoder, err := game.NewDecoder(cfg.Decoding, logger)
	if err != nil {
		logger.Fatal("creating decoder", zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Health(ctx, 5*time.Second); err != nil {
		logger.Fatal("database health check", zap.Error(err))
	}
	logger.Info("database connected", zap.String("host", cfg.Database.Host), zap.Int("port", cfg.Database.Port))

	repo := postgres.NewGameRepository(pool.DB(), decoder)
	imp := importer.New(importer.NewDirSource(cfg.Importer.Extensions), repo, decoder, cfg.Importer, logger)

	res, err := imp.Run(ctx, *sourceDir)
	logger.Info("import finished",
		zap.String("run_id", res.RunID.String()),
		zap.Int("imported", res.Imported),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("failed", res.Failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	if err != nil {
		logger.Error("import failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
