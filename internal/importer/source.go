package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cory-johannsen/hanabi-json/internal/wire"
)

// Record is one raw game record read from a source, not yet validated.
type Record struct {
	Path   string
	Format wire.Format
	Data   []byte
}

// Source loads raw records from a source directory.
//
// Precondition: sourceDir must exist.
// Postcondition: returns the records in a stable order (possibly none), or a non-nil error.
type Source interface {
	Load(sourceDir string) ([]Record, error)
}

// DirSource walks a directory tree and reads every file whose extension is
// in its allow list. Matching is case-insensitive.
type DirSource struct {
	extensions []string
}

// NewDirSource returns a DirSource accepting the given extensions, each with
// its leading dot.
func NewDirSource(extensions []string) *DirSource {
	exts := make([]string, len(extensions))
	for i, e := range extensions {
		exts[i] = strings.ToLower(e)
	}
	return &DirSource{extensions: exts}
}

// Load implements Source. Files are returned in lexical path order.
func (s *DirSource) Load(sourceDir string) ([]Record, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", sourceDir)
	}

	var records []Record
	err = filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !slices.Contains(s.extensions, strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		format, err := wire.FormatFromPath(path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		records = append(records, Record{Path: path, Format: format, Data: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", sourceDir, err)
	}
	return records, nil
}
