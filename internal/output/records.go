package output

import (
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

// RecordWriter streams connector records to w in one OutputFormat.
// JSON and YAML records are written as soon as they arrive; table output is
// buffered until Flush.
type RecordWriter struct {
	w      io.Writer
	format OutputFormat
	table  *Table
	count  int
}

// NewRecordWriter returns a RecordWriter for format.
func NewRecordWriter(w io.Writer, format OutputFormat) *RecordWriter {
	return &RecordWriter{w: w, format: format}
}

// Send writes one record.
func (r *RecordWriter) Send(record any) error {
	defer func() { r.count++ }()

	switch r.format {
	case FormatJSON:
		return json.NewEncoder(r.w).Encode(record)
	case FormatTable:
		if rower, ok := record.(TableRower); ok {
			if r.table == nil {
				r.table = NewTable(rower.TableHeaders()...)
			}
			r.table.Row(rower.TableRow()...)
			return nil
		}
		return r.writeYAML(record)
	default:
		return r.writeYAML(record)
	}
}

// Count returns the number of records sent.
func (r *RecordWriter) Count() int {
	return r.count
}

// Flush renders any buffered table.
func (r *RecordWriter) Flush() error {
	if r.table == nil || r.table.Len() == 0 {
		return nil
	}
	_, err := fmt.Fprintln(r.w, r.table.String())
	r.table = nil
	return err
}

func (r *RecordWriter) writeYAML(record any) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	if r.count > 0 {
		if _, err := io.WriteString(r.w, "---\n"); err != nil {
			return err
		}
	}
	_, err = r.w.Write(data)
	return err
}
