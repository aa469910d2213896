package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

const testManifest = `
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

// writeChart writes a manifest and its data to a fresh directory and
// returns the manifest path.
func writeChart(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sales.csv"), []byte("month,sold\njan,3\nfeb,5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "sales.toml")
	if err := os.WriteFile(path, []byte(testManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,png,json", []string{"svg", "png", "json"}},
		{"spaces trimmed", "svg, json", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "charts/sales.toml", "charts/sales"},
		{"out/chart.svg", "sales.toml", "out/chart"},
		{"out/chart.png", "sales.toml", "out/chart"},
		{"out/chart", "sales.toml", "out/chart"},
		{"out/chart.v2", "sales.toml", "out/chart.v2"},
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}

	paths, err := writeArtifacts(artifacts, []string{"svg", "json"}, "", filepath.Join(dir, "c.toml"))
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	want := []string{filepath.Join(dir, "c.svg"), filepath.Join(dir, "c.json")}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], p)
		}
	}

	single := filepath.Join(dir, "nested", "chart.image")
	paths, err = writeArtifacts(artifacts, []string{"svg"}, single, "c.toml")
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	if paths[0] != single {
		t.Errorf("single output path = %q, want %q", paths[0], single)
	}
	if data, _ := os.ReadFile(single); string(data) != "<svg/>" {
		t.Errorf("single output = %q", data)
	}
}

func TestRunRender(t *testing.T) {
	t.Setenv("STACKPLOT_CACHE_DIR", t.TempDir())
	path := writeChart(t)
	c := New(os.Stderr, LogInfo)
	ctx := context.Background()

	opts := renderOpts{formats: "svg,json", quiet: true}
	if err := c.runRender(ctx, os.Stdout, path, opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}
	base := filepath.Join(filepath.Dir(path), "sales")
	for _, ext := range []string{".svg", ".json"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}

	var stdout bytes.Buffer
	opts = renderOpts{output: "-", formats: "svg", noCache: true}
	if err := c.runRender(ctx, &stdout, path, opts); err != nil {
		t.Fatalf("runRender() to stdout error: %v", err)
	}
	if !bytes.Contains(stdout.Bytes(), []byte("<svg")) {
		t.Errorf("stdout = %.60q, want svg", stdout.String())
	}

	opts = renderOpts{output: "-", formats: "svg,png", noCache: true}
	if err := c.runRender(ctx, &stdout, path, opts); err == nil {
		t.Error("stdout with two formats should fail")
	}

	opts = renderOpts{formats: "gif", quiet: true}
	if err := c.runRender(ctx, &stdout, path, opts); err == nil {
		t.Error("invalid format should fail")
	}
}
