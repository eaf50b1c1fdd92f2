// Package ingest decodes user-supplied inputs: CRM exports as CSV and meeting
// transcripts as plain text, PDF or DOCX.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

const utf8BOM = "\ufeff"

// Table is a parsed CSV export.
type Table struct {
	Header []string
	Rows   []map[string]string
}

// ParseCSV reads a CSV export with a header row into one map per record.
func ParseCSV(r io.Reader) ([]map[string]string, error) {
	table, err := ReadTable(r)
	if err != nil {
		return nil, err
	}
	return table.Rows, nil
}

// ReadTable reads a CSV export keeping the header order. Short records are
// padded with empty values and extra values are dropped. Records whose fields
// are all empty are skipped.
func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{Header: []string{}, Rows: []map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	header = normalizeHeader(header)

	table := &Table{Header: header, Rows: []map[string]string{}}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record %d: %w", line, err)
		}
		if blank(record) {
			continue
		}
		if len(record) > len(header) {
			slog.Debug("Dropping extra CSV values", "record", line, "extra", len(record)-len(header))
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// normalizeHeader strips a byte order mark, trims names, names empty columns
// by position and suffixes repeated names so every column stays addressable.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = "Column " + strconv.Itoa(i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = name + "_" + strconv.Itoa(n)
		}
		out[i] = name
	}
	return out
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
