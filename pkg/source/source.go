// Package source loads datasets from files.
//
// A [Loader] reads one file format into a [dataset.Dataset] of map
// records. [ForPath] picks the loader from the file extension:
//
//   - .csv: a header row followed by records; numeric cells become float64
//   - .json: an array of objects, or {"data": [...], "metadata": ...}
//   - .parquet: any flat schema, read through Apache Arrow
//
// Empty cells and nulls load as nil, which plots treat as missing data.
package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/errors"
)

// Loader reads a dataset from a file.
type Loader interface {
	Load(ctx context.Context, path string) (*dataset.Dataset, error)
}

// Supported file extensions.
const (
	ExtCSV     = ".csv"
	ExtJSON    = ".json"
	ExtParquet = ".parquet"
)

// ForPath returns the loader for path's extension.
func ForPath(path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtCSV:
		return CSV{}, nil
	case ExtJSON:
		return JSON{}, nil
	case ExtParquet:
		return Parquet{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported data file %q (want .csv, .json or .parquet)", filepath.Base(path))
}

// Load reads path with the loader for its extension.
func Load(ctx context.Context, path string) (*dataset.Dataset, error) {
	l, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, path)
}

// open opens path, mapping a missing file to FILE_NOT_FOUND.
func open(ctx context.Context, path string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "load %s", path)
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "data file %s does not exist", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "open %s", path)
	}
	return f, nil
}
