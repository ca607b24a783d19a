package bulkimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

// ParsedRow is one non-empty CSV record. Index is 1-based and follows input order.
type ParsedRow struct {
	Index  int
	Fields domain.RawFields
}

func checkCSVFilename(filename string) error {
	if strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) != ".csv" {
		return fmt.Errorf("%w: only CSV files are allowed", ErrInvalidFormat)
	}
	return nil
}

// ParseCSV reads a header-led CSV stream. Values are trimmed, fully empty
// records are skipped, and any parser error aborts the whole ingestion.
func ParseCSV(r io.Reader, filename string) ([]ParsedRow, error) {
	if err := checkCSVFilename(filename); err != nil {
		return nil, err
	}

	reader := csv.NewReader(stripUTF8BOM(bufio.NewReader(r)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", ErrInvalidFormat)
		}
		return nil, fmt.Errorf("%w: invalid CSV format: %v", ErrInvalidFormat, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]ParsedRow, 0, 64)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: invalid CSV format: %v", ErrInvalidFormat, err)
		}

		fields := make(domain.RawFields, len(header))
		empty := true
		for i, name := range header {
			if name == "" {
				continue
			}
			if _, seen := fields[name]; seen {
				continue
			}
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			if value != "" {
				empty = false
			}
			fields[name] = value
		}
		if empty {
			continue
		}

		rows = append(rows, ParsedRow{Index: len(rows) + 1, Fields: fields})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file contains no candidate rows", ErrInvalidFormat)
	}

	return rows, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}
