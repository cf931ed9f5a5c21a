// Package finance implements the charge-import pipeline: spreadsheet
// parsing, the wide-to-long pivot with validation, unit reconciliation,
// and billing-period management.
package finance

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet is the parsed first worksheet of an uploaded spreadsheet:
// ordered headers and one map per data row keyed by header.
type Sheet struct {
	Headers []string
	Rows    []map[string]string
}

// ParseSheet reads an xlsx file and flattens its first worksheet.
// Cells missing from short rows read as "".
func ParseSheet(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Sheet{}, nil
	}

	headers := rows[0]
	sheet := &Sheet{Headers: headers}
	for _, cells := range rows[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}
