package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/robert-at-pretension-io/tew-attrs/internal/facts"
)

// Header is the first CSV record
var Header = []string{"#", "Name", "Description", "Category"}

// WriteCSV writes one record per row; Category is left for curation
func WriteCSV(w io.Writer, rows []facts.AttributeRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, row := range rows {
		rec := []string{strconv.Itoa(row.Number), row.Name, row.Description, row.Category}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", row.Number, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCategorized reads a curated CSV. Columns are found by header name
// ("#", "Name", "Description" required; "Category" and "Tone" optional),
// so curators may reorder or add columns.
func ReadCategorized(r io.Reader) ([]facts.AttributeRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("categorized CSV is empty")
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, required := range []string{"#", "Name", "Description"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("categorized CSV missing %q column", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	rows := []facts.AttributeRow{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		num, err := parseRowNumber(field(rec, "#"))
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		rows = append(rows, facts.AttributeRow{
			Number:      num,
			Name:        field(rec, "Name"),
			Description: field(rec, "Description"),
			Category:    strings.TrimSpace(field(rec, "Category")),
			Tone:        strings.TrimSpace(field(rec, "Tone")),
		})
	}
	return rows, nil
}

// parseRowNumber accepts "12" and the "12.0" spreadsheets like to write
func parseRowNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid row number %q", s)
	}
	return int(f), nil
}
