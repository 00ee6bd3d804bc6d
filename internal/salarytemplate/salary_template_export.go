package salarytemplate

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"go-payroll/internal/salaryengine"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet   = "Salary Structure"
	warningsSheet = "Warnings"
	firstLineRow  = 6
)

var exportHeaders = []string{"Component", "Role", "Calculation", "Value", "Monthly Amount", "Annual Amount"}

// renderTemplateWorkbook lays out one template as a breakdown sheet with a
// totals row, plus a warnings sheet when the allocation produced any.
func renderTemplateWorkbook(t SalaryTemplate, result salaryengine.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Salary Template", t.Name},
		{"Annual CTC", t.AnnualCTC.InexactFloat64()},
		{"Status", t.Status},
	}
	for i, pair := range summary {
		row := i + 1
		if err := setRow(f, exportSheet, row, pair); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(exportSheet, cellName(1, row), cellName(1, row), headerStyle); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(exportSheet, "B2", "B2", amountStyle); err != nil {
		return nil, err
	}

	headerRow := firstLineRow - 1
	headers := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		headers[i] = h
	}
	if err := setRow(f, exportSheet, headerRow, headers); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, cellName(1, headerRow), cellName(len(exportHeaders), headerRow), headerStyle); err != nil {
		return nil, err
	}

	row := firstLineRow
	for _, line := range result.Lines {
		name := line.ComponentName
		if name == "" {
			name = fmt.Sprintf("#%d", line.ComponentID)
		}
		if line.Invalid {
			name += " (invalid)"
		}
		values := []any{
			name,
			string(line.Role),
			string(line.CalculationType),
			line.Value.InexactFloat64(),
			line.MonthlyAmount.InexactFloat64(),
			line.AnnualAmount.InexactFloat64(),
		}
		if err := setRow(f, exportSheet, row, values); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(exportSheet, cellName(5, row), cellName(6, row), amountStyle); err != nil {
			return nil, err
		}
		row++
	}

	totals := []any{"Total", "", "", "", result.TotalMonthly.InexactFloat64(), result.TotalAnnual.InexactFloat64()}
	if err := setRow(f, exportSheet, row, totals); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, cellName(1, row), cellName(6, row), totalStyle); err != nil {
		return nil, err
	}

	reconciled := "No"
	if result.ReconciledToCTC {
		reconciled = "Yes"
	}
	if err := setRow(f, exportSheet, row+1, []any{"Reconciled to CTC", reconciled}); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(exportSheet, "A", "A", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "B", "F", 18); err != nil {
		return nil, err
	}

	if len(result.Warnings) > 0 {
		if err := writeWarnings(f, result.Warnings, headerStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeWarnings(f *excelize.File, warnings []salaryengine.Warning, headerStyle int) error {
	if _, err := f.NewSheet(warningsSheet); err != nil {
		return err
	}
	if err := setRow(f, warningsSheet, 1, []any{"Kind", "Row", "Component ID", "Message"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(warningsSheet, "A1", "D1", headerStyle); err != nil {
		return err
	}

	for i, w := range warnings {
		rowRef := any("")
		if w.Index >= 0 {
			rowRef = w.Index + 1
		}
		componentRef := any("")
		if w.ComponentID != 0 {
			componentRef = w.ComponentID
		}
		if err := setRow(f, warningsSheet, i+2, []any{string(w.Kind), rowRef, componentRef, w.Message}); err != nil {
			return err
		}
	}
	return f.SetColWidth(warningsSheet, "D", "D", 60)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		if err := f.SetCellValue(sheet, cellName(col+1, row), v); err != nil {
			return err
		}
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func exportFileName(templateName string, now time.Time) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(templateName)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	slug := b.String()
	if slug == "" {
		slug = "template"
	}
	return fmt.Sprintf("salary_template_%s_%s.xlsx", slug, now.Format("20060102"))
}
