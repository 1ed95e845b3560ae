// Package main provides a CLI that validates a game record, reports its derived
// properties and optionally converts it between JSON and YAML.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hanabi-json/internal/config"
	"github.com/cory-johannsen/hanabi-json/internal/game"
	"github.com/cory-johannsen/hanabi-json/internal/observability"
	"github.com/cory-johannsen/hanabi-json/internal/wire"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (empty = defaults and HANABI_* environment)")
	inPath := flag.String("in", "", "game record to read (.json, .yaml or .yml)")
	outPath := flag.String("out", "", "optional path to write the record to; \"-\" writes to stdout")
	format := flag.String("format", "", "output format for -out -: json or yaml (default: input format)")
	indent := flag.Bool("indent", true, "indent written output")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: hanabi-json -in <record> [-out <path>|-] [-format json|yaml] [-config <file>]")
		os.Exit(1)
	}

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

	g, err := game.Load(*inPath, decoder)
	if err != nil {
		logger.Fatal("invalid game record", zap.String("path", *inPath), zap.Error(err))
	}

	fields := []zap.Field{
		zap.String("path", *inPath),
		zap.Int("players", g.NumberOfPlayers()),
		zap.Int("deck", len(g.Deck)),
		zap.Int("actions", len(g.Actions)),
		zap.String("variant", string(g.Options.Variant)),
	}
	if cards, err := g.CardsPerPlayer(); err == nil {
		fields = append(fields, zap.Int("cards_per_player", cards))
	} else {
		fields = append(fields, zap.NamedError("cards_per_player", err))
	}
	if id, ok := g.ID.Get(); ok {
		fields = append(fields, zap.Int64("id", id))
	}
	if seed, ok := g.Seed.Get(); ok {
		fields = append(fields, zap.String("seed", seed))
	}
	logger.Info("game record valid", fields...)

	switch *outPath {
	case "":
	case "-":
		f, err := outputFormat(*format, *inPath)
		if err != nil {
			logger.Fatal("choosing output format", zap.Error(err))
		}
		data, err := g.Marshal(f, *indent)
		if err != nil {
			logger.Fatal("encoding game record", zap.Error(err))
		}
		if _, err := os.Stdout.Write(data); err != nil {
			logger.Fatal("writing game record", zap.Error(err))
		}
	default:
		if err := g.Save(*outPath); err != nil {
			logger.Fatal("saving game record", zap.Error(err))
		}
		logger.Info("game record written", zap.String("path", *outPath))
	}

	logger.Debug("done", zap.Duration("elapsed", time.Since(start)))
}

func outputFormat(flagValue, inPath string) (wire.Format, error) {
	if flagValue != "" {
		return wire.ParseFormat(flagValue)
	}
	return wire.FormatFromPath(inPath)
}
