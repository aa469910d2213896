package source

import (
	"context"
	"encoding/json"
	"io"

	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/errors"
)

// JSON loads an array of objects, or an object with "data" and
// "metadata" members.
type JSON struct{}

type envelope struct {
	Data     []map[string]any `json:"data"`
	Metadata any              `json:"metadata"`
}

// Load reads the file at path.
func (j JSON) Load(ctx context.Context, path string) (*dataset.Dataset, error) {
	f, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := j.Read(ctx, f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "load %s", path)
	}
	return ds, nil
}

// Read decodes JSON from r.
func (JSON) Read(ctx context.Context, r io.Reader) (*dataset.Dataset, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err == nil {
		return dataset.FromRecords(records, nil), nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "want an array of objects or {\"data\": [...]}")
	}
	return dataset.FromRecords(env.Data, env.Metadata), nil
}
