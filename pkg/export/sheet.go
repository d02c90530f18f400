// Package export renders small tabular documents, such as the evaluation
// schedule, as CSV or PDF.
package export

import (
	"fmt"
	"io"
	"strings"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts "csv" or "pdf" in any case.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatCSV, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// Column is one column of a sheet. Weight sizes the PDF column relative to the others.
type Column struct {
	Header string
	Weight float64
}

// Sheet is a titled table. Every row must have one cell per column.
type Sheet struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

func (s Sheet) check() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("sheet %q has no columns", s.Title)
	}
	for i, row := range s.Rows {
		if len(row) != len(s.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(s.Columns))
		}
	}
	return nil
}

func (s Sheet) headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Header
	}
	return out
}

// Write renders the sheet to w in the requested format.
func Write(w io.Writer, sheet Sheet, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, sheet)
	case FormatPDF:
		return WritePDF(w, sheet)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
