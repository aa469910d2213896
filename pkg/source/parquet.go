package source

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/errors"
)

// parquetBatchSize is the number of rows converted per Arrow record.
const parquetBatchSize = 4096

// Parquet loads flat Parquet files. Every column becomes a record field;
// the dataset metadata is the list of column names.
type Parquet struct{}

// Load reads the file at path.
func (Parquet) Load(ctx context.Context, path string) (*dataset.Dataset, error) {
	f, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f, file.WithReadProps(parquet.NewReaderProperties(memory.DefaultAllocator)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "read parquet %s", path)
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: parquetBatchSize}, memory.NewGoAllocator())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "read parquet %s", path)
	}
	table, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "read parquet %s", path)
	}
	defer table.Release()

	schema := table.Schema()
	names := make([]string, schema.NumFields())
	for i, fld := range schema.Fields() {
		names[i] = fld.Name
	}

	records := make([]map[string]any, 0, table.NumRows())
	tr := array.NewTableReader(table, parquetBatchSize)
	defer tr.Release()
	for tr.Next() {
		rec := tr.Record()
		for row := 0; row < int(rec.NumRows()); row++ {
			m := make(map[string]any, len(names))
			for c, name := range names {
				col := rec.Column(c)
				if col.IsNull(row) {
					m[name] = nil
					continue
				}
				m[name] = col.GetOneForMarshal(row)
			}
			records = append(records, m)
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "read parquet %s", path)
		}
	}
	if err := tr.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "read parquet %s", path)
	}
	return dataset.FromRecords(records, names), nil
}
