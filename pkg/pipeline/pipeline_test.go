package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/stackplot/pkg/cache"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/observability"
)

const chartManifest = `
title = "Sales"
width = 320
height = 240

[data.sales]
path = "sales.csv"

[scales.x]
type = "category"

[scales.y]
type = "linear"
include = [0]

[[plots]]
type = "bar"
datasets = ["sales"]
attrs.x = { field = "month", scale = "x" }
attrs.y = { field = "sold", scale = "y" }

[axes.x]
scale = "x"

[axes.y]
scale = "y"
`

// writeChart writes a manifest and its CSV to a fresh directory and
// returns the manifest path.
func writeChart(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sales.csv"), []byte("month,sold\njan,3\nfeb,5\nmar,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "chart.toml")
	if err := os.WriteFile(path, []byte(chartManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"json", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want %s", tt.format, errors.GetCode(err), errors.ErrCodeInvalidFormat)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{ManifestPath: "chart.toml"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no manifest", Options{}, errors.ErrCodeInvalidConfig},
		{"format", Options{ManifestPath: "c.toml", Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative width", Options{ManifestPath: "c.toml", Width: -1}, errors.ErrCodeInvalidConfig},
		{"too large", Options{ManifestPath: "c.toml", Height: MaxSize + 1}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParseHashesDataFiles(t *testing.T) {
	path := writeChart(t)
	ctx := context.Background()

	in1, err := Parse(ctx, Options{ManifestPath: path})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if in1.Manifest.Dir != filepath.Dir(path) {
		t.Errorf("Dir = %q, want %q", in1.Manifest.Dir, filepath.Dir(path))
	}

	csv := filepath.Join(filepath.Dir(path), "sales.csv")
	if err := os.WriteFile(csv, []byte("month,sold\njan,4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	in2, err := Parse(ctx, Options{ManifestPath: path})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if in1.Hash == in2.Hash {
		t.Error("editing a data file should change the input hash")
	}

	os.Remove(csv)
	if _, err := Parse(ctx, Options{ManifestPath: path}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Parse() with missing data = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecute(t *testing.T) {
	path := writeChart(t)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil)
	defer runner.Close()

	opts := Options{ManifestPath: path, Formats: []string{FormatSVG, FormatJSON}}
	res, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}
	if res.Stats.Rows != 3 {
		t.Errorf("Rows = %d, want 3", res.Stats.Rows)
	}
	if !bytes.Contains(res.Artifacts[FormatSVG], []byte("<svg")) {
		t.Errorf("svg artifact = %.60q", res.Artifacts[FormatSVG])
	}

	var dump LayoutDump
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &dump); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if dump.Width != 320 || dump.Height != 240 {
		t.Errorf("dump size = %vx%v, want 320x240", dump.Width, dump.Height)
	}
	if dump.Root.Kind != "table" || len(dump.Root.Children) == 0 {
		t.Errorf("dump root = %s with %d children", dump.Root.Kind, len(dump.Root.Children))
	}

	again, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !again.CacheInfo.RenderHit {
		t.Error("second run should hit the cache")
	}
	if !bytes.Equal(again.Artifacts[FormatSVG], res.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from the rendered one")
	}

	opts.Refresh = true
	fresh, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if fresh.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestExecuteOverridesSize(t *testing.T) {
	path := writeChart(t)
	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{
		ManifestPath: path,
		Width:        200,
		Height:       100,
		Formats:      []string{FormatPNG},
		Scale:        1,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	png := res.Artifacts[FormatPNG]
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("png artifact has no PNG signature")
	}
	if res.Layout.Width != 200 || res.Layout.Height != 100 {
		t.Errorf("layout size = %vx%v, want 200x100", res.Layout.Width, res.Layout.Height)
	}
}

func TestExecuteInlineManifest(t *testing.T) {
	src := strings.Replace(chartManifest, `path = "sales.csv"`, `records = [{ month = "jan", sold = 1 }]`, 1)
	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{Manifest: []byte(src)})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Stats.Rows != 1 {
		t.Errorf("Rows = %d, want 1", res.Stats.Rows)
	}

	_, err = NewRunner(nil, nil).Execute(context.Background(), Options{Manifest: []byte("title = 1")})
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("Execute() with a bad manifest = %v, want INVALID_MANIFEST", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLoadComplete(_ context.Context, path string, rows int, _ time.Duration, err error) {
	h.record("load " + filepath.Base(path))
}

func (h *recordingHooks) OnLayoutComplete(context.Context, time.Duration, error) {
	h.record("layout")
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, _ error) {
	h.record("render " + strings.Join(formats, ","))
}

func TestExecuteCallsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)

	if _, err := NewRunner(nil, nil).Execute(context.Background(), Options{ManifestPath: writeChart(t)}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := []string{"load sales.csv", "layout", "render svg"}
	if strings.Join(hooks.events, "|") != strings.Join(want, "|") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}
