package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/varalys/codeqlreport/internal/types"
)

type PrintOptions struct {
	NoColor bool
	// Path is the written workbook, shown in the footer when set.
	Path string
}

var severityColors = map[string]lipgloss.Color{
	"critical": lipgloss.Color("9"),
	"high":     lipgloss.Color("1"),
	"medium":   lipgloss.Color("11"),
	"low":      lipgloss.Color("6"),
	"warning":  lipgloss.Color("11"),
	"note":     lipgloss.Color("6"),
}

var totalStyle = lipgloss.NewStyle().Bold(true)

// PrintSummary renders the summary rows as a table. The Total row is drawn as
// the table footer.
func PrintSummary(w io.Writer, rows []types.SummaryRow, opts PrintOptions) error {
	body, total := splitTotal(rows)
	if len(body) == 0 {
		fmt.Fprintln(w, "No open alerts ✅")
		printPath(w, opts)
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("Types of Vulnerabilities", "Severity Level", "Number of Occurrences")
	for _, r := range body {
		sev := r.Severity
		if !opts.NoColor {
			sev = colorSeverity(sev)
		}
		if err := table.Append(r.Category, sev, strconv.Itoa(r.Count)); err != nil {
			return err
		}
	}
	if total != nil {
		label := total.Category
		if !opts.NoColor {
			label = totalStyle.Render(label)
		}
		table.Footer(label, total.Severity, strconv.Itoa(total.Count))
	}
	if err := table.Render(); err != nil {
		return err
	}
	printPath(w, opts)
	return nil
}

func printPath(w io.Writer, opts PrintOptions) {
	if opts.Path != "" {
		fmt.Fprintf(w, "Report: %s\n", opts.Path)
	}
}

func splitTotal(rows []types.SummaryRow) ([]types.SummaryRow, *types.SummaryRow) {
	if n := len(rows); n > 0 && rows[n-1].Category == types.TotalLabel {
		return rows[:n-1], &rows[n-1]
	}
	return rows, nil
}

func colorSeverity(s string) string {
	c, ok := severityColors[strings.ToLower(s)]
	if !ok {
		return s
	}
	return lipgloss.NewStyle().Foreground(c).Render(s)
}
