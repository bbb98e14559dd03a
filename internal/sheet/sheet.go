// Package sheet prepares local files for upload. The service only
// accepts CSV, so spreadsheet files are converted client-side: the
// first sheet of an .xlsx/.xlsm workbook becomes CSV rows.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CSVFromFile reads path and returns the upload filename plus CSV
// bytes. Plain .csv files pass through untouched; spreadsheet files are
// converted. Anything else is rejected before a network call is wasted.
func CSVFromFile(path string) (string, []byte, error) {
	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", nil, err
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return "", nil, fmt.Errorf("%s: empty file", name)
		}
		return name, data, nil
	case ".xlsx", ".xlsm":
		data, err := convertWorkbook(path)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", name, err)
		}
		return strings.TrimSuffix(name, filepath.Ext(name)) + ".csv", data, nil
	default:
		return "", nil, fmt.Errorf("%s: unsupported file type (want .csv or .xlsx)", name)
	}
}

func convertWorkbook(path string) ([]byte, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty sheet")
	}

	// Column count follows the header row; short rows are padded so
	// every record has the same width.
	width := len(rows[0])
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	for _, row := range rows {
		rec := make([]string, width)
		for i := 0; i < width && i < len(row); i++ {
			rec[i] = strings.TrimSpace(row[i])
		}
		if err := cw.Write(rec); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
