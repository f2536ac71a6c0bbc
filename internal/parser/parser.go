// Package parser extracts article texts from uploaded files.
package parser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrNoTextColumn is returned when a CSV upload lacks the required column.
var ErrNoTextColumn = fmt.Errorf("csv file must contain a 'text' column")

// ParseUpload extracts articles from an uploaded file, dispatching on the
// file extension. Supported: .txt (one article per line) and .csv (requires
// a 'text' column).
func ParseUpload(filename string, r io.Reader) ([]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return ParseTXT(r)
	case ".csv":
		return ParseCSV(r)
	default:
		return nil, fmt.Errorf("unsupported file type %q (use .txt or .csv)", filepath.Ext(filename))
	}
}

// ParseTXT reads one article per line, skipping blank lines.
func ParseTXT(r io.Reader) ([]string, error) {
	var texts []string
	scanner := bufio.NewScanner(r)
	// Articles can be long; raise the default 64K line limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		texts = append(texts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return texts, nil
}

// ParseCSV reads articles from the 'text' column, dropping empty cells.
// Rows may have varying field counts; only the text column is consulted.
func ParseCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	textCol := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "text") {
			textCol = i
			break
		}
	}
	if textCol == -1 {
		return nil, ErrNoTextColumn
	}

	var texts []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		if textCol >= len(row) {
			continue
		}
		text := strings.TrimSpace(row[textCol])
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}
