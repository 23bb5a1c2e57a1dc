package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dvhalloran/cartload/internal/model"
)

// RowError captures one rejected data row. Line is 1-indexed with the header
// counted as line 1, so the first data row reports as line 2.
type RowError struct {
	Line     int
	Messages []string
	Raw      map[string]string
}

// Result is the partition of a CSV file into validated products and per-row
// failures. len(Valid)+len(Errors) equals the number of data rows read.
type Result struct {
	Valid  []model.Product
	Errors []RowError
}

// File opens and ingests a staged upload. An unopenable file is the fatal
// stream-level case and propagates to the caller.
func File(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read scans a CSV stream once, in file order. Rows that fail to parse or
// validate are recorded and the scan continues; only a stream-level read
// error aborts the ingest. The full result is held in memory, which is fine
// for human-curated admin uploads.
func Read(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Result{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
	}

	res := &Result{}
	line := 1 // header row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				res.Errors = append(res.Errors, RowError{
					Line:     line,
					Messages: []string{fmt.Sprintf("malformed row: %v", parseErr.Err)},
				})
				continue
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		raw := make(map[string]string, len(cols))
		for i, col := range cols {
			if i >= len(record) || col == "" {
				continue
			}
			raw[col] = record[i]
		}
		product, msgs := ValidateRow(raw)
		if len(msgs) > 0 {
			res.Errors = append(res.Errors, RowError{Line: line, Messages: msgs, Raw: raw})
			continue
		}
		res.Valid = append(res.Valid, product)
	}
	return res, nil
}
