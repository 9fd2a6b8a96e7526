package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Load reads a semicolon-delimited student dataset file. The header must
// contain every schema column. Files that are not valid UTF-8 are decoded as
// Latin-1, which the original UCI exports use.
func Load(path string) (*Frame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	var reader io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		reader = transform.NewReader(reader, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(reader)
	cr.Comma = ';'

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range header {
		header[i] = trimQuotes(col)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	frame := NewFrame(header)
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		row, err := parseRecord(header, record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := frame.Append(row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}

	if frame.Len() == 0 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}
	return frame, nil
}

func checkHeader(header []string) error {
	seen := make(map[string]bool, len(header))
	for _, col := range header {
		seen[col] = true
	}
	if !seen[TargetColumn] {
		return fmt.Errorf("dataset missing target column %q", TargetColumn)
	}
	for _, col := range Columns {
		if !seen[col] {
			return fmt.Errorf("dataset missing column %q", col)
		}
	}
	return nil
}

func parseRecord(header, record []string) (Row, error) {
	if len(record) != len(header) {
		return Row{}, fmt.Errorf("expected %d fields, got %d", len(header), len(record))
	}
	row := NewRow()
	for i, col := range header {
		value := trimQuotes(record[i])
		if IsCategorical(col) {
			row.Cats[col] = value
			continue
		}
		num, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Row{}, fmt.Errorf("column %q: invalid number %q", col, value)
		}
		row.Nums[col] = num
	}
	return row, nil
}

// some distributions of the dataset quote every field
func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
