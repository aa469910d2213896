// Package dataset holds the record sequences bound to plots and scales.
//
// A Dataset is an ordered slice of opaque records plus one metadata value
// shared by all of them. Replacing either notifies subscribers
// synchronously. Datasets may be shared by any number of plots and scales;
// none of them owns it.
package dataset

import (
	"github.com/matzehuels/stackplot/pkg/event"
)

// Dataset is an ordered sequence of records with out-of-band metadata.
type Dataset struct {
	data     []any
	metadata any
	updates  event.Registry[*Dataset]
}

// New creates a dataset. A nil data slice is treated as empty.
func New(data []any, metadata any) *Dataset {
	if data == nil {
		data = []any{}
	}
	return &Dataset{data: data, metadata: metadata}
}

// FromRecords wraps a slice of map records.
func FromRecords(records []map[string]any, metadata any) *Dataset {
	data := make([]any, len(records))
	for i, r := range records {
		data[i] = r
	}
	return New(data, metadata)
}

// Data returns the records. Callers must not modify the slice.
func (d *Dataset) Data() []any {
	return d.data
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.data)
}

// SetData replaces the records and notifies subscribers.
func (d *Dataset) SetData(data []any) {
	if data == nil {
		data = []any{}
	}
	d.data = data
	d.updates.Notify(d)
}

// Metadata returns the metadata value.
func (d *Dataset) Metadata() any {
	return d.metadata
}

// SetMetadata replaces the metadata and notifies subscribers.
func (d *Dataset) SetMetadata(m any) {
	d.metadata = m
	d.updates.Notify(d)
}

// OnUpdate subscribes fn to data and metadata changes.
func (d *Dataset) OnUpdate(fn func(*Dataset)) event.Handle {
	return d.updates.Subscribe(fn)
}

// OffUpdate removes a subscription made with OnUpdate.
func (d *Dataset) OffUpdate(h event.Handle) error {
	return d.updates.Unsubscribe(h)
}

// Subscribers returns the number of active subscriptions.
func (d *Dataset) Subscribers() int {
	return d.updates.Len()
}
