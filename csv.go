package etl

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CSVLoader reads a listing dataset from a CSV file into a
// RecordBatch. The header is checked against the declared schema;
// cell values are normalized (whitespace trimmed, categorical text
// title-cased, currency noise stripped from price) and coerced to
// their declared types. Cells that fail coercion become null cells —
// flagging them is the validator's job, not the loader's.
type CSVLoader struct {
	// Schema declares the expected columns. Defaults to DefaultSchema.
	Schema Schema

	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// NewCSVLoader returns a loader over the default listing schema.
func NewCSVLoader() *CSVLoader {
	return &CSVLoader{Schema: DefaultSchema()}
}

var titleCaser = cases.Title(language.Spanish)

// Extract implements Loader.
func (l *CSVLoader) Extract(_ context.Context, source string) (*RecordBatch, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	if l.Comma != 0 {
		r.Comma = l.Comma
	}
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse csv: missing header row")
	}

	schema := l.Schema
	if schema == nil {
		schema = DefaultSchema()
	}

	index, err := columnIndex(schema, rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, parseRecord(schema, index, row))
	}
	return NewRecordBatch(records), nil
}

// columnIndex maps each schema column to its header position. Every
// declared column must be present; extra input columns are ignored.
func columnIndex(schema Schema, header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(strings.ToLower(name))] = i
	}

	index := make(map[string]int, len(schema))
	var missing []string
	for _, field := range schema {
		pos, ok := positions[field.Name]
		if !ok {
			missing = append(missing, field.Name)
			continue
		}
		index[field.Name] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("schema: missing column(s) %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func parseRecord(schema Schema, index map[string]int, row []string) Record {
	cell := func(name string) (string, bool) {
		pos, ok := index[name]
		if !ok || pos >= len(row) {
			return "", false
		}
		raw := strings.TrimSpace(row[pos])
		return raw, raw != ""
	}

	var rec Record
	for _, field := range schema {
		raw, present := cell(field.Name)
		if !present {
			continue
		}
		switch field.Name {
		case ColID:
			rec.ID = Value(raw)
		case ColPrice:
			rec.Price = parseFloatCell(normalizePrice(raw))
		case ColPropertyType:
			rec.PropertyType = Value(titleCaser.String(strings.ToLower(raw)))
		case ColAreaM2:
			rec.AreaM2 = parseFloatCell(raw)
		case ColPublicationDate:
			if t, err := cast.ToTimeE(raw); err == nil {
				rec.PublicationDate = Value(t)
			}
		case ColZone:
			rec.Zone = Value(titleCaser.String(strings.ToLower(raw)))
		case ColRooms:
			rec.Rooms = parseIntCell(raw)
		case ColBathrooms:
			rec.Bathrooms = parseIntCell(raw)
		case ColStatus:
			rec.Status = Value(titleCaser.String(strings.ToLower(raw)))
		case ColDescription:
			rec.Description = Value(raw)
		}
	}
	return rec
}

func parseFloatCell(raw string) Null[float64] {
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return Null[float64]{}
	}
	return Value(v)
}

func parseIntCell(raw string) Null[int] {
	v, err := cast.ToIntE(raw)
	if err != nil {
		return Null[int]{}
	}
	return Value(v)
}

// normalizePrice strips currency symbols and thousands separators,
// keeping digits, decimal point and a leading minus so negative
// prices survive to be flagged by the validator.
func normalizePrice(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CSVSink writes the batch to a CSV file. The write is all-or-nothing:
// output goes to a temp file in the destination directory which is
// renamed over the target only after a clean flush, so a failed run
// leaves no partial file behind.
type CSVSink struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// NewCSVSink returns a sink with the default delimiter.
func NewCSVSink() *CSVSink {
	return &CSVSink{}
}

// Load implements Sink.
func (s *CSVSink) Load(_ context.Context, batch *RecordBatch, destination string) error {
	dir := filepath.Dir(destination)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(destination)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := csv.NewWriter(tmp)
	if s.Comma != 0 {
		w.Comma = s.Comma
	}

	if err := w.Write(batch.Columns); err != nil {
		return err
	}
	row := make([]string, len(batch.Columns))
	for i := range batch.Records {
		for j, col := range batch.Columns {
			value, _ := batch.Records[i].Cell(col)
			row[j] = value
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), destination)
}
