package game

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hanabi-json/internal/config"
	"github.com/cory-johannsen/hanabi-json/internal/schema"
)

// NewDecoder builds a schema.Decoder from the decoding configuration, loading
// the variant catalog file when one is configured.
//
// Precondition: cfg passed config.Validate; logger is non-nil.
// Postcondition: returns a ready Decoder or a non-nil error.
func NewDecoder(cfg config.DecodingConfig, logger *zap.Logger) (*schema.Decoder, error) {
	policy, err := schema.ParseVariantPolicy(cfg.VariantPolicy)
	if err != nil {
		return nil, err
	}

	catalog := schema.NewVariantCatalog()
	if cfg.VariantsFile != "" {
		f, err := os.Open(cfg.VariantsFile)
		if err != nil {
			return nil, fmt.Errorf("opening variants file: %w", err)
		}
		defer f.Close()
		if catalog, err = schema.LoadVariantCatalog(f); err != nil {
			return nil, err
		}
		logger.Debug("variant catalog loaded",
			zap.String("path", cfg.VariantsFile),
			zap.Int("variants", catalog.Len()),
		)
	}

	return schema.NewDecoder(
		schema.WithLogger(logger),
		schema.WithVariantPolicy(policy, catalog),
		schema.WithStrictCounts(cfg.StrictCounts),
	), nil
}
