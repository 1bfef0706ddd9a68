package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Row is one parsed batch line, keyed by column header.
type Row map[string]string

// Parse reads a delimited UTF-8 batch into its header set and map rows.
// Rows shorter than the header are padded with empty values; longer rows
// have their extra cells dropped. limit <= 0 reads the whole file.
func Parse(data []byte, limit int) ([]string, []Row, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) == 0 || (len(header) == 1 && header[0] == "") {
		return nil, nil, fmt.Errorf("no parseable header row")
	}

	var rows []Row
	for limit <= 0 || len(rows) < limit {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", len(rows)+2, err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

// --- value parsing helpers shared by the mappers ---

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, err)
	}
	return v, nil
}

// parseAmountDefault returns def when the cell is empty or non-numeric.
// Used for optional numeric columns.
func parseAmountDefault(s string, def float64) float64 {
	v, err := parseAmount(s)
	if err != nil {
		return def
	}
	return v
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]+`)

// parseLooseAmount strips currency symbols, separators and other non-numeric
// characters before parsing. Used by the manual mapping path where the
// source column format is unknown.
func parseLooseAmount(s string) float64 {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// parseTimestamp tries the known provider layouts and falls back to the
// current time when the cell is missing or unrecognized, matching the
// upstream ingest behavior: a bad date never rejects a row.
func parseTimestamp(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}
