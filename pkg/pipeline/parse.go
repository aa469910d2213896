package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/stackplot/pkg/cache"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/manifest"
)

// Input is a parsed manifest and the hash of everything it reads.
type Input struct {
	Manifest *manifest.Manifest

	// Hash covers the manifest source and the bytes of every data file,
	// so editing a CSV invalidates cached artifacts.
	Hash string
}

// Parse reads and validates the manifest and hashes its inputs.
func Parse(ctx context.Context, opts Options) (*Input, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	src := opts.Manifest
	if len(src) == 0 {
		data, err := readFile(opts.ManifestPath)
		if err != nil {
			return nil, err
		}
		src = data
	}
	m, err := manifest.Parse(src)
	if err != nil {
		return nil, err
	}
	m.Dir = baseDir(opts)

	inputs := [][]byte{src}
	for _, path := range m.DataPaths() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "hash inputs")
		}
		data, err := readFile(path)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, data)
	}
	opts.Logger.Debug("parsed manifest", "plots", len(m.Plots), "datasets", len(m.Data))
	return &Input{Manifest: m, Hash: cache.HashAll(inputs...)}, nil
}

func baseDir(opts Options) string {
	dir := opts.BaseDir
	if dir == "" && opts.ManifestPath != "" {
		dir = filepath.Dir(opts.ManifestPath)
	}
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "read %s", path)
	}
	return data, nil
}
