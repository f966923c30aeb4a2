package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/varalys/codeqlreport/internal/types"
)

const (
	SummarySheet = "Summary"
	DetailsSheet = "Details"
)

type column struct {
	header string
	width  float64
}

var summaryColumns = []column{
	{"Types of Vulnerabilities", 45},
	{"Severity Level", 25},
	{"Number of Occurrences", 26},
}

var detailColumns = []column{
	{"Types of Vulnerabilities", 45},
	{"Severity Level", 13},
	{"Summary", 105},
	{"Location Path", 65},
	{"Location Line", 13}, // alert start line; the start column is not reported
	{"Detailed Description", 65},
	{"Recommendation", 65},
	{"Example", 65},
	{"References", 65},
}

// FileName returns the report file name for repo: the repository name
// lower-cased with dashes turned into underscores, then outputFile.
func FileName(repo, outputFile string) string {
	return strings.ReplaceAll(strings.ToLower(repo), "-", "_") + "_" + outputFile
}

// XLSXWriter writes the Summary and Details sheets of a report workbook.
type XLSXWriter struct{}

// Write saves summary and details to path. An existing workbook keeps its
// other sheets. The file is written to a temporary name next to path and
// renamed into place, so a failed write leaves any previous report untouched.
func (XLSXWriter) Write(path string, summary []types.SummaryRow, details []types.Alert) (err error) {
	f, err := openOrCreate(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	summaryRows := make([][]any, 0, len(summary))
	for _, r := range summary {
		summaryRows = append(summaryRows, []any{r.Category, r.Severity, r.Count})
	}
	if err := writeSheet(f, SummarySheet, summaryColumns, summaryRows); err != nil {
		return err
	}
	detailRows := make([][]any, 0, len(details))
	for _, a := range details {
		detailRows = append(detailRows, []any{
			a.Category, a.Severity, a.Summary, a.Path, a.StartLine,
			a.Description, a.Recommendation, a.Example, a.References,
		})
	}
	if err := writeSheet(f, DetailsSheet, detailColumns, detailRows); err != nil {
		return err
	}
	if idx, err := f.GetSheetIndex(SummarySheet); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return saveAtomic(f, path)
}

func openOrCreate(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", path, err)
		}
		return f, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	f := excelize.NewFile()
	// the default sheet becomes Summary
	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// writeSheet replaces sheet with a header row and rows. An existing sheet is
// renamed aside before the new one is created so that a workbook never drops
// to zero sheets.
func writeSheet(f *excelize.File, sheet string, cols []column, rows [][]any) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	stale := ""
	if idx >= 0 && !isEmptySheet(f, sheet) {
		stale = sheet + "_old"
		if err := f.SetSheetName(sheet, stale); err != nil {
			return fmt.Errorf("replace sheet %s: %w", sheet, err)
		}
		idx = -1
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}
	if stale != "" {
		if err := f.DeleteSheet(stale); err != nil {
			return fmt.Errorf("replace sheet %s: %w", sheet, err)
		}
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, c.width); err != nil {
			return fmt.Errorf("set width %s!%s: %w", sheet, name, err)
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func isEmptySheet(f *excelize.File, sheet string) bool {
	rows, err := f.GetRows(sheet)
	return err == nil && len(rows) == 0
}

func saveAtomic(f *excelize.File, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".codeqlreport-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	_ = tmp.Close()
	if err := f.SaveAs(name); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("move report into place: %w", err)
	}
	return nil
}

// ReadSummary returns the rows of the Summary sheet below the header.
func ReadSummary(path string) ([]types.SummaryRow, error) {
	rows, err := readSheet(path, SummarySheet)
	if err != nil {
		return nil, err
	}
	out := make([]types.SummaryRow, 0, len(rows))
	for _, r := range rows {
		r = pad(r, len(summaryColumns))
		n, _ := strconv.Atoi(r[2])
		out = append(out, types.SummaryRow{Category: r[0], Severity: r[1], Count: n})
	}
	return out, nil
}

// ReadDetails returns the rows of the Details sheet below the header. Only the
// columns the sheet carries are populated.
func ReadDetails(path string) ([]types.Alert, error) {
	rows, err := readSheet(path, DetailsSheet)
	if err != nil {
		return nil, err
	}
	out := make([]types.Alert, 0, len(rows))
	for _, r := range rows {
		r = pad(r, len(detailColumns))
		line, _ := strconv.Atoi(r[4])
		out = append(out, types.Alert{
			Category:       r[0],
			Severity:       r[1],
			Summary:        r[2],
			Path:           r[3],
			StartLine:      line,
			Description:    r[5],
			Recommendation: r[6],
			Example:        r[7],
			References:     r[8],
		})
	}
	return out, nil
}

func readSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

// pad extends r to n cells; GetRows drops trailing empty ones.
func pad(r []string, n int) []string {
	for len(r) < n {
		r = append(r, "")
	}
	return r
}
