package spreadsheet

import (
	"strconv"

	"github.com/xuri/excelize/v2"

	"churnportal/internal/app/forms"
	"churnportal/internal/app/policies"
	"churnportal/internal/domain/employee"
)

const (
	PredictionsSheet = "Predictions"
	SummarySheet     = "Summary"
)

// Exporter renders batch outcomes as xlsx workbooks.
type Exporter struct{}

func (Exporter) ExportBatch(rows []map[string]string, outcome employee.BatchOutcome) ([]byte, error) {
	return ExportBatch(rows, outcome)
}

// ExportBatch writes the submitted rows with their labels on one sheet and
// the batch summary on another.
func ExportBatch(rows []map[string]string, outcome employee.BatchOutcome) ([]byte, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName(file.GetSheetName(0), PredictionsSheet); err != nil {
		return nil, err
	}
	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	header := make([]any, 0, len(forms.FieldNames)+2)
	header = append(header, "employee")
	for _, name := range forms.FieldNames {
		header = append(header, name)
	}
	header = append(header, "prediction")
	if err := file.SetSheetRow(PredictionsSheet, "A1", &header); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := file.SetCellStyle(PredictionsSheet, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, row := range rows {
		line := make([]any, 0, len(header))
		line = append(line, i+1)
		for _, name := range forms.FieldNames {
			line = append(line, cellValue(row[name]))
		}
		label := ""
		if i < len(outcome.Predictions) {
			label = outcome.Predictions[i].Text()
		} else if outcome.Failed() {
			label = outcome.Summary.Error
		}
		line = append(line, label)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := file.SetSheetRow(PredictionsSheet, cell, &line); err != nil {
			return nil, err
		}
	}
	if err := file.SetColWidth(PredictionsSheet, "B", "K", 20); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(SummarySheet); err != nil {
		return nil, err
	}
	summary := outcome.Summary
	lines := [][]any{
		{"Total employees", summary.TotalEmployees},
		{"Will stay", summary.WillStay},
		{"Will leave", summary.WillLeave},
		{"Attrition rate (%)", summary.AttritionRatePercent},
	}
	if summary.Failed() {
		lines = [][]any{{"Error", summary.Error}}
	}
	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := file.SetSheetRow(SummarySheet, cell, &line); err != nil {
			return nil, err
		}
	}
	if err := file.SetColWidth(SummarySheet, "A", "A", 22); err != nil {
		return nil, err
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cellValue stores numbers as numbers so the sheet stays sortable.
func cellValue(raw string) any {
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return raw
}

var _ policies.ReportExporter = Exporter{}
