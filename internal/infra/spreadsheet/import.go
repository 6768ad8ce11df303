package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"churnportal/internal/app/forms"
)

const maxXLSCells = 100000

var (
	ErrNoWorksheet     = errors.New("spreadsheet: no worksheet found")
	ErrMultipleSheets  = errors.New("spreadsheet: multiple worksheets found; please upload a file with a single sheet")
	ErrEmptyWorksheet  = errors.New("spreadsheet: worksheet is empty")
	ErrUnsupportedFile = errors.New("spreadsheet: only .xlsx and .xls files are supported")
)

// Columns that have no sensible default and must be present in an upload.
var requiredColumns = []string{
	forms.FieldSatisfaction,
	forms.FieldEvaluation,
	forms.FieldProjects,
	forms.FieldHours,
	forms.FieldYears,
	forms.FieldDepartment,
	forms.FieldSalary,
}

// MissingColumnsError lists required columns absent from the header row.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "spreadsheet: missing columns: " + strings.Join(e.Columns, ", ")
}

// ReadRows reads employee rows from a single sheet upload. The first row is
// the header; columns are matched to form fields by name and unknown columns
// are ignored. Blank rows are skipped.
func ReadRows(reader io.Reader, filename string) ([]map[string]string, error) {
	cells, err := readCells(reader, filename)
	if err != nil {
		return nil, err
	}
	header := make([]string, len(cells[0]))
	seen := map[string]bool{}
	for i, raw := range cells[0] {
		if name, ok := forms.CanonicalField(raw); ok && !seen[name] {
			header[i] = name
			seen[name] = true
		}
	}
	var missing []string
	for _, name := range requiredColumns {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	rows := make([]map[string]string, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := make(map[string]string, len(seen))
		blank := true
		for i, name := range header {
			if name == "" || i >= len(line) {
				continue
			}
			value := strings.TrimSpace(line[i])
			if value != "" {
				blank = false
			}
			row[name] = value
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorksheet
	}
	return rows, nil
}

func readCells(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("spreadsheet: open xls: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, ErrNoWorksheet
		}
		if workbook.NumSheets() > 1 {
			return nil, ErrMultipleSheets
		}
		rows := workbook.ReadAllCells(maxXLSCells)
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	case ".xlsx", ".xlsm", "":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("spreadsheet: open xlsx: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoWorksheet
		}
		if len(sheets) > 1 {
			return nil, ErrMultipleSheets
		}
		rows, err := file.GetRows(sheets[0])
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	default:
		return nil, ErrUnsupportedFile
	}
}
