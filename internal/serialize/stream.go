// Package serialize writes produced series as an Arrow IPC stream and reads
// IPC streams back into updating tables. A Codec does the same over zstd
// compressed streams.
package serialize

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/gridframe/table"
)

// NewRecord assembles equally long series into one record. Field metadata
// carries each series' descriptor. Caller MUST call Release on the record.
func NewRecord(series []*table.Series) (arrow.Record, error) {
	fields := make([]arrow.Field, len(series))
	cols := make([]arrow.Array, len(series))
	rows := -1
	for i, s := range series {
		if rows >= 0 && s.Len() != rows {
			return nil, &table.SchemaError{Column: s.Name(),
				Msg: fmt.Sprintf("has %d rows, expected %d", s.Len(), rows)}
		}
		rows = s.Len()
		fields[i] = s.Descriptor().Field()
		cols[i] = s.Data()
	}
	if rows < 0 {
		rows = 0
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), cols, int64(rows)), nil
}

// WriteRecord serializes a single record to Arrow IPC stream format.
func WriteRecord(rec arrow.Record, allocator memory.Allocator) ([]byte, error) {
	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(allocator))
	defer writer.Close()

	if err := writer.Write(rec); err != nil {
		return nil, fmt.Errorf("failed to write IPC record: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close IPC writer: %w", err)
	}

	return buf.Bytes(), nil
}

// SerializeSeries writes series as one record in Arrow IPC stream format.
func SerializeSeries(series []*table.Series, allocator memory.Allocator) ([]byte, error) {
	rec, err := NewRecord(series)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	return WriteRecord(rec, allocator)
}


// ReadRecords decodes every record of an IPC stream.
// Caller MUST call Release on each record.
func ReadRecords(data []byte, allocator memory.Allocator) ([]arrow.Record, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(allocator))
	if err != nil {
		return nil, fmt.Errorf("failed to open IPC stream: %w", err)
	}
	defer reader.Release()

	var out []arrow.Record
	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		out = append(out, rec)
	}
	if err := reader.Err(); err != nil {
		for _, rec := range out {
			rec.Release()
		}
		return nil, fmt.Errorf("failed to read IPC stream: %w", err)
	}
	return out, nil
}

// ReadTables decodes every record of an IPC stream into an updating table
// named name. Caller MUST Release each returned table.
func ReadTables(name string, data []byte, allocator memory.Allocator) ([]*table.UpdatingTable, error) {
	records, err := ReadRecords(data, allocator)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()

	out := make([]*table.UpdatingTable, 0, len(records))
	for _, rec := range records {
		t, err := table.NewUpdatingTable(name, rec)
		if err != nil {
			for _, prev := range out {
				prev.Release()
			}
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
