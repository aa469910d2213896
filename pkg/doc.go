// Package pkg provides the core libraries for Stackplot charts.
//
// # Overview
//
// Stackplot lays out data-bound charts on a grid of components and renders
// them to SVG, PNG and JSON. The pkg directory is organized into four main
// areas:
//
//  1. Components and layout ([component], [chart], [axis], [legend])
//  2. Data and scales ([dataset], [scale], [source])
//  3. Drawing ([plot], [drawer], [animator], [surface], [interaction])
//  4. Orchestration ([manifest], [pipeline], [cache], [observability])
//
// # Architecture
//
// The typical data flow through Stackplot:
//
//	TOML manifest + CSV/JSON/Parquet data
//	         ↓
//	    [manifest] package (decode, validate, build scales and plots)
//	         ↓
//	    [component] package (table layout: requests, then space)
//	         ↓
//	    [plot] + [drawer] packages (project data through scales, draw marks)
//	         ↓
//	    [surface] package (SVG document, PNG raster)
//
// # Quick Start
//
// Build a chart in code:
//
//	x, y := scale.NewLinear(), scale.NewLinear()
//	line := plot.NewLine()
//	line.AddDataset("sales", dataset.FromRecords(records, nil))
//	line.Project("x", dataset.Field("month"), x)
//	line.Project("y", dataset.Field("sold"), y)
//
//	xAxis, _ := axis.NewNumeric(x, axis.Bottom)
//	yAxis, _ := axis.NewNumeric(y, axis.Left)
//	c, _ := chart.NewStandard(line)
//	c.SetXAxis(xAxis)
//	c.SetYAxis(yAxis)
//
//	doc := surface.NewDocument(800, 600)
//	component.RenderTo(c, doc.Root(), 800, 600)
//	svg := doc.SVG()
//
// Or render a manifest with the pipeline:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), logger)
//	result, err := runner.Execute(ctx, pipeline.Options{ManifestPath: "chart.toml"})
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/component/...    # Specific package
//
// [component]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/component
// [chart]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/chart
// [axis]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/axis
// [legend]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/legend
// [dataset]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/dataset
// [scale]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/scale
// [source]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/source
// [plot]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/plot
// [drawer]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/drawer
// [animator]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/animator
// [surface]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/surface
// [interaction]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/interaction
// [manifest]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/manifest
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stackplot/pkg/observability
package pkg
