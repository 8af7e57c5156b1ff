// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

package model // import "github.com/signalpipe/signalpipe/model"

// Batch is a bounded, ordered group of records of a single signal type.
// Receivers emit batches, processors transform or coalesce them, exporters
// transmit them. The zero value of a Batch is not usable, construct with
// NewBatch.
type Batch struct {
	signal  Signal
	records []Record
}

// NewBatch creates an empty batch for the given signal type.
func NewBatch(signal Signal) Batch {
	return Batch{signal: signal}
}

// NewBatchFromRecords creates a batch holding the given records. The slice is
// owned by the batch afterwards.
func NewBatchFromRecords(signal Signal, records []Record) Batch {
	return Batch{signal: signal, records: records}
}

// Signal returns the data type carried by the batch.
func (b Batch) Signal() Signal {
	return b.signal
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	return len(b.records)
}

// Records returns the underlying record slice in arrival order.
func (b Batch) Records() []Record {
	return b.records
}

// Append adds records to the batch, preserving order.
func (b Batch) Append(records ...Record) Batch {
	b.records = append(b.records, records...)
	return b
}

// Clone deep-copies the batch so two pipelines fed by one receiver can never
// observe each other's mutations.
func (b Batch) Clone() Batch {
	records := make([]Record, len(b.records))
	for i, r := range b.records {
		records[i] = r.Clone()
	}
	return Batch{signal: b.signal, records: records}
}
