package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/stackplot/pkg/cache"
	"github.com/matzehuels/stackplot/pkg/observability"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("STACKPLOT_CACHE_DIR", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}
}

func TestCacheDirEnv(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "artifacts")
	t.Setenv("STACKPLOT_CACHE_DIR", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != custom {
		t.Errorf("cacheDir() with STACKPLOT_CACHE_DIR = %q, want %q", dir, custom)
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("STACKPLOT_CACHE_DIR", t.TempDir())

	c, err := newCache(true)
	if err != nil {
		t.Fatalf("newCache(true) error: %v", err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("newCache(true) = %T, want cache.NullCache", c)
	}

	c, err = newCache(false)
	if err != nil {
		t.Fatalf("newCache(false) error: %v", err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("newCache(false) = %T, want *cache.FileCache", c)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STACKPLOT_CACHE_DIR", dir)

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b"} {
		if err := fc.Set(ctx, key, []byte(key), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	t.Cleanup(observability.Reset)
	c := New(os.Stderr, LogInfo)
	cmd := c.RootCommand()
	cmd.SetArgs([]string{"cache", "clear"})
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if _, ok, _ := fc.Get(ctx, "a"); ok {
		t.Error("entry should be gone after cache clear")
	}
}
