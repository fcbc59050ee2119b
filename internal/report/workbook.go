package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/san-kum/convlab/internal/analysis"
)

const summarySheet = "Summary"

// WriteWorkbook saves one summary sheet plus one sheet per entry with its
// yearly dispersion series. Undefined values are left blank.
func WriteWorkbook(path string, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}

	header := []interface{}{"Scenario", "Description", "Beta slope", "Beta p", "Beta verdict"}
	for _, idx := range analysis.Indices() {
		name := string(idx)
		header = append(header, name+" slope", name+" p", name+" verdict")
	}
	if err := writeRow(f, summarySheet, 1, header); err != nil {
		return err
	}
	setWidths(f, summarySheet, len(header), 16)

	used := map[string]bool{strings.ToLower(summarySheet): true}
	for i, e := range entries {
		rep := e.Report
		row := []interface{}{e.Name, e.Description}
		if rep.BetaErr != nil {
			row = append(row, nil, nil, rep.BetaErr.Error())
		} else {
			row = append(row, cell(rep.Beta.Slope), cell(rep.Beta.PValue), rep.Beta.Class.String())
		}
		for _, idx := range analysis.Indices() {
			tr, ok := rep.Trend(idx)
			switch {
			case !ok:
				row = append(row, nil, nil, nil)
			case tr.Err != nil:
				row = append(row, nil, nil, tr.Err.Error())
			default:
				row = append(row, cell(tr.Slope), cell(tr.PValue), tr.Class.String())
			}
		}
		if err := writeRow(f, summarySheet, i+2, row); err != nil {
			return err
		}

		if err := writeSeries(f, sheetName(e.Name, used), e); err != nil {
			return fmt.Errorf("sheet %s: %w", e.Name, err)
		}
	}

	return f.SaveAs(path)
}

func writeSeries(f *excelize.File, sheet string, e Entry) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Year", "Effective n", "Gini", "Range", "CoV", "Variance", "Note"}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	setWidths(f, sheet, len(header), 14)

	for i, pt := range e.Report.Series {
		row := []interface{}{pt.Year, pt.EffectiveN, cell(pt.Gini), cell(pt.Range), cell(pt.CoV), cell(pt.Variance)}
		if pt.Err != nil {
			row = append(row, pt.Err.Error())
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, start, &values)
}

func setWidths(f *excelize.File, sheet string, cols int, width float64) {
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return
	}
	f.SetColWidth(sheet, "A", last, width)
}

// cell maps non-finite values to an empty cell.
func cell(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

const maxSheetName = 31

var sheetReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// sheetName turns name into a legal sheet name not yet in used and records
// it. Sheet names compare case-insensitively.
func sheetName(name string, used map[string]bool) string {
	base := strings.Trim(sheetReplacer.Replace(name), "'")
	if base == "" {
		base = "Sheet"
	}
	base = truncate(base, maxSheetName)

	sheet := base
	for n := 2; used[strings.ToLower(sheet)]; n++ {
		suffix := "_" + strconv.Itoa(n)
		sheet = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(sheet)] = true
	return sheet
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
