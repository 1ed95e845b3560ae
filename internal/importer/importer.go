// Package importer archives a directory of game records in one import run.
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hanabi-json/internal/config"
	"github.com/cory-johannsen/hanabi-json/internal/game"
	"github.com/cory-johannsen/hanabi-json/internal/schema"
	"github.com/cory-johannsen/hanabi-json/internal/storage/postgres"
)

// Store archives validated games. *postgres.GameRepository satisfies it.
type Store interface {
	Save(ctx context.Context, g *game.Game, runID uuid.UUID) (*postgres.StoredGame, error)
}

// Result summarises one import run.
type Result struct {
	RunID      uuid.UUID
	Imported   int
	Duplicates int
	Failed     int
}

// Importer validates records from a Source and archives them in a Store.
type Importer struct {
	source          Source
	store           Store
	decoder         *schema.Decoder
	logger          *zap.Logger
	continueOnError bool
}

// New constructs an Importer. A nil decoder uses schema defaults and a nil
// logger discards output.
//
// Precondition: source and store must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, store Store, decoder *schema.Decoder, cfg config.ImporterConfig, logger *zap.Logger) *Importer {
	if decoder == nil {
		decoder = schema.NewDecoder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		source:          source,
		store:           store,
		decoder:         decoder,
		logger:          logger,
		continueOnError: cfg.ContinueOnError,
	}
}

// Run imports every record found in sourceDir under a fresh run id. Records
// already archived count as duplicates, not failures.
//
// Precondition: sourceDir must satisfy the source's layout requirements.
// Postcondition: returns the run summary. Without continue-on-error the first
// failing record stops the run; with it, every failure is reported together.
func (imp *Importer) Run(ctx context.Context, sourceDir string) (Result, error) {
	overall := time.Now()
	res := Result{RunID: uuid.New()}
	logger := imp.logger.With(zap.String("run_id", res.RunID.String()))

	records, err := imp.source.Load(sourceDir)
	if err != nil {
		return res, fmt.Errorf("loading source: %w", err)
	}
	logger.Info("records found", zap.Int("count", len(records)), zap.String("source", sourceDir))

	var errs error
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, multierr.Append(errs, err)
		}

		stored, err := imp.importOne(ctx, rec, res.RunID)
		switch {
		case err == nil:
			res.Imported++
			logger.Debug("archived", zap.String("path", rec.Path), zap.Int64("id", stored.ID))
		case errors.Is(err, postgres.ErrDuplicateGame):
			res.Duplicates++
			logger.Info("duplicate skipped", zap.String("path", rec.Path))
		default:
			res.Failed++
			logger.Warn("import failed", zap.String("path", rec.Path), zap.Error(err))
			if !imp.continueOnError {
				return res, err
			}
			errs = multierr.Append(errs, err)
		}
	}

	logger.Info("import complete",
		zap.Int("imported", res.Imported),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("failed", res.Failed),
		zap.Duration("elapsed", time.Since(overall)),
	)
	return res, errs
}

func (imp *Importer) importOne(ctx context.Context, rec Record, runID uuid.UUID) (*postgres.StoredGame, error) {
	g, err := game.Parse(rec.Data, rec.Format, imp.decoder)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rec.Path, err)
	}
	stored, err := imp.store.Save(ctx, g, runID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rec.Path, err)
	}
	return stored, nil
}
