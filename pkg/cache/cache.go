// Package cache stores rendered chart artifacts.
//
// Artifacts are keyed by the hash of the manifest and data they were
// rendered from plus the output options, so a changed input never hits a
// stale entry. Three backends implement [Cache]:
//
//   - [FileCache]: JSON files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Entry lifetimes.
const (
	// TTLArtifact bounds how long rendered output is reused.
	TTLArtifact = 7 * 24 * time.Hour

	// TTLChart bounds how long the server keeps a submitted chart.
	TTLChart = 24 * time.Hour
)

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale,omitempty"`
}

// ArtifactKey returns the key of an artifact rendered from inputs with
// the given hash.
func ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

// ChartKey returns the key of one format of a chart submitted to the
// server.
func ChartKey(id, format string) string {
	return "chart:" + id + ":" + format
}
