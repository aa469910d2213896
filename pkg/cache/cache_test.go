package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	stperrors "github.com/matzehuels/stackplot/pkg/errors"
)

var errNetwork = errors.New("network error")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v; want a clean miss", hit, err)
	}

	if err := c.Set(ctx, "chart", []byte("<svg/>"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "chart")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Errorf("Get(chart) = %q, %v, %v; want <svg/>", data, hit, err)
	}

	if err := c.Delete(ctx, "chart"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := c.Delete(ctx, "chart"); err != nil {
		t.Errorf("second Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "chart"); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be deleted")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v; want a clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Errorf("Clear() = %d, %v; want 3", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestNewFileCacheEmptyDir(t *testing.T) {
	if _, err := NewFileCache(""); !stperrors.Is(err, stperrors.ErrCodeInvalidPath) {
		t.Errorf("NewFileCache(\"\") code = %v, want INVALID_PATH", stperrors.GetCode(err))
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("STACKPLOT_CACHE_DIR", "/tmp/plots")
	if d, err := DefaultDir(); err != nil || d != "/tmp/plots" {
		t.Errorf("DefaultDir() = %q, %v; want the environment override", d, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	if HashAll([]byte("ab"), []byte("c")) == HashAll([]byte("a"), []byte("bc")) {
		t.Error("HashAll should separate its inputs")
	}
}

func TestArtifactKey(t *testing.T) {
	k1 := ArtifactKey("h", ArtifactKeyOpts{Format: "svg", Width: 800, Height: 600})
	k2 := ArtifactKey("h", ArtifactKeyOpts{Format: "png", Width: 800, Height: 600})
	k3 := ArtifactKey("g", ArtifactKeyOpts{Format: "svg", Width: 800, Height: 600})
	if k1 == k2 || k1 == k3 {
		t.Error("different inputs or options should produce different keys")
	}
	if k1 != ArtifactKey("h", ArtifactKeyOpts{Format: "svg", Width: 800, Height: 600}) {
		t.Error("ArtifactKey should be deterministic")
	}
	if got := ChartKey("id", "svg"); got != "chart:id:svg" {
		t.Errorf("ChartKey() = %q", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(errNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != errNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(errNetwork) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	retryDelay = time.Millisecond
	defer func() { retryDelay = 100 * time.Millisecond }()
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, true, 1, false},
		{"permanent", 5, false, 1, true},
		{"transient", 1, true, 2, false},
		{"exhausted", 5, true, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls > tt.failures {
					return nil
				}
				if tt.retryable {
					return Retryable(errNetwork)
				}
				return errNetwork
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("RetryWithBackoff() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && IsRetryable(err) {
				t.Error("the final error should be unwrapped")
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestRedisCache(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url"); !stperrors.Is(err, stperrors.ErrCodeInvalidConfig) {
		t.Errorf("NewRedisCache(bad url) code = %v, want INVALID_CONFIG", stperrors.GetCode(err))
	}

	c, ok, err := NewRedisCacheFromEnv(context.Background())
	if !ok {
		t.Skip("STACKPLOT_REDIS_URL not set")
	}
	if err != nil {
		t.Fatalf("NewRedisCacheFromEnv error: %v", err)
	}
	defer c.Close()
	c.prefix = "stackplot-test:" + t.Name() + ":"

	ctx := context.Background()
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if data, hit, err := c.Get(ctx, "k"); !hit || err != nil || string(data) != "v" {
		t.Errorf("Get(k) = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Error(err)
	}
}
