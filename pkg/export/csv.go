package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the header line followed by every row.
func WriteCSV(w io.Writer, sheet Sheet) error {
	if err := sheet.check(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(sheet.headers()); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	if err := cw.WriteAll(sheet.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
