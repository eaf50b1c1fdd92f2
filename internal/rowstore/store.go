// Package rowstore holds the original tabular rows of a CRM export, each tagged
// with a synthetic row id assigned at ingestion.
package rowstore

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/Veraticus/dealflow/internal/common"
)

// IDKey is the reserved column carrying the stringified row id.
const IDKey = "__AI_ROW_ID__"

// MissingKey is the column of the placeholder row returned when a lookup fails.
const MissingKey = "Error"

// Row is one record of the source data.
type Row struct {
	Fields map[string]string
	ID     int
}

// Get returns the value of column name.
func (r Row) Get(name string) string {
	return r.Fields[name]
}

// Display returns the row's columns in key order, without the reserved id column.
func (r Row) Display() [][2]string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		if k == IDKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, r.Fields[k]})
	}
	return out
}

// Store is an ordered, prepend/append-only collection of rows.
// Ids are never reused or mutated for the lifetime of a Store.
type Store struct {
	index   map[int]int
	rows    []Row
	columns []string
}

// Ingest builds a Store from parsed records. Each row's id is its zero-based
// position in rawRows and is also written to the reserved IDKey column.
func Ingest(rawRows []map[string]string) *Store {
	s := &Store{
		rows:  make([]Row, 0, len(rawRows)),
		index: make(map[int]int, len(rawRows)),
	}

	seen := make(map[string]bool)
	for i, raw := range rawRows {
		fields := make(map[string]string, len(raw)+1)
		for k, v := range raw {
			fields[k] = v
		}
		fields[IDKey] = strconv.Itoa(i)

		s.index[i] = len(s.rows)
		s.rows = append(s.rows, Row{ID: i, Fields: fields})
		s.trackColumns(seen, raw)
	}

	return s
}

// trackColumns records column names in first-seen order. Map iteration is
// unordered, so names new to this row are appended sorted.
func (s *Store) trackColumns(seen map[string]bool, fields map[string]string) {
	var fresh []string
	for k := range fields {
		if k == IDKey || seen[k] {
			continue
		}
		seen[k] = true
		fresh = append(fresh, k)
	}
	sort.Strings(fresh)
	s.columns = append(s.columns, fresh...)
}

// IngestWithHeader builds a Store whose Columns follow header order.
func IngestWithHeader(header []string, rawRows []map[string]string) *Store {
	s := Ingest(rawRows)

	ordered := make([]string, 0, len(s.columns))
	known := make(map[string]bool, len(s.columns))
	for _, c := range s.columns {
		known[c] = true
	}
	placed := make(map[string]bool, len(header))
	for _, h := range header {
		if h == IDKey || placed[h] {
			continue
		}
		placed[h] = true
		ordered = append(ordered, h)
	}
	for _, c := range s.columns {
		if !placed[c] {
			ordered = append(ordered, c)
		}
	}
	s.columns = ordered
	return s
}

// Lookup returns the row with the given id.
func (s *Store) Lookup(id int) (Row, bool) {
	if s == nil {
		return Row{}, false
	}
	pos, ok := s.index[id]
	if !ok {
		return Row{}, false
	}
	return s.rows[pos], true
}

// Detail returns the row with the given id, or a placeholder row carrying an
// explanatory MissingKey column when no such row exists.
func (s *Store) Detail(id int) Row {
	if row, ok := s.Lookup(id); ok {
		return row
	}
	return Row{
		ID: id,
		Fields: map[string]string{
			MissingKey: fmt.Sprintf("Could not find original data for row ID %d", id),
		},
	}
}

// InsertFront prepends a row tagged with id. The caller guarantees id is
// disjoint from every existing id; a collision is rejected.
func (s *Store) InsertFront(fields map[string]string, id int) error {
	if _, exists := s.index[id]; exists {
		return fmt.Errorf("%w: %d", common.ErrDuplicateRowID, id)
	}

	row := Row{ID: id, Fields: make(map[string]string, len(fields)+1)}
	for k, v := range fields {
		row.Fields[k] = v
	}
	row.Fields[IDKey] = strconv.Itoa(id)

	s.rows = append([]Row{row}, s.rows...)
	for k := range s.index {
		s.index[k]++
	}
	s.index[id] = 0

	seen := make(map[string]bool, len(s.columns))
	for _, c := range s.columns {
		seen[c] = true
	}
	s.trackColumns(seen, fields)

	return nil
}

// Rows returns a copy of the rows in display order.
func (s *Store) Rows() []Row {
	if s == nil {
		return nil
	}
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Len returns the number of rows.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}

// Columns returns every column name seen, excluding the reserved id column.
func (s *Store) Columns() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// CSV serializes the rows, reserved id column first, for the dashboard prompt.
func (s *Store) CSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{IDKey}, s.Columns()...)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range s.Rows() {
		for i, col := range header {
			record[i] = row.Fields[col]
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write csv row %d: %w", row.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.String(), nil
}
