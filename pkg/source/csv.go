package source

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/errors"
)

// CSV loads comma-separated files with a header row.
type CSV struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// Strings keeps every cell as a string.
	Strings bool
}

// Load reads the file at path.
func (c CSV) Load(ctx context.Context, path string) (*dataset.Dataset, error) {
	f, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := c.Read(ctx, f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "load %s", path)
	}
	return ds, nil
}

// Read decodes CSV from r. The header row names the record fields; the
// dataset metadata is the header.
func (c CSV) Read(ctx context.Context, r io.Reader) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	if c.Comma != 0 {
		cr.Comma = c.Comma
	}
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return dataset.New(nil, []string{}), nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var records []map[string]any
	for {
		if len(records)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = c.cell(row[i])
			} else {
				rec[name] = nil
			}
		}
		records = append(records, rec)
	}
	return dataset.FromRecords(records, header), nil
}

func (c CSV) cell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if c.Strings {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
