package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/varalys/codeqlreport/internal/types"
)

// ErrSeverityConflict is returned under ConflictError when one category is
// reported with more than one severity.
var ErrSeverityConflict = errors.New("severity conflict")

// ConflictPolicy decides what happens when alerts of one category disagree on
// severity.
type ConflictPolicy int

const (
	// ConflictFirstSeen keeps the severity of the first alert of the category.
	ConflictFirstSeen ConflictPolicy = iota
	// ConflictError fails the aggregation.
	ConflictError
)

// ParseConflictPolicy maps the configuration value ("first" or "error") to a
// policy. The empty string selects ConflictFirstSeen.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return ConflictFirstSeen, nil
	case "error":
		return ConflictError, nil
	}
	return ConflictFirstSeen, fmt.Errorf("unknown severity conflict policy %q (want first or error)", s)
}

func (p ConflictPolicy) String() string {
	if p == ConflictError {
		return "error"
	}
	return "first"
}

// Conflict records a category whose alerts disagreed on severity.
type Conflict struct {
	Category string
	Kept     string
	Other    string
	Alert    int
}

// Summary is the aggregated view written to the Summary sheet.
type Summary struct {
	// Rows ends with the Total row.
	Rows      []types.SummaryRow
	Conflicts []Conflict
}

// Summarize groups alerts by category in first-seen order, sorts the groups by
// their severity's position in order and appends the Total row.
func Summarize(alerts []types.Alert, order types.SeverityOrder, policy ConflictPolicy) (Summary, error) {
	var (
		rows      []types.SummaryRow
		index     = map[string]int{}
		conflicts []Conflict
	)
	for _, a := range alerts {
		i, ok := index[a.Category]
		if !ok {
			index[a.Category] = len(rows)
			rows = append(rows, types.SummaryRow{Category: a.Category, Severity: a.Severity, Count: 1})
			continue
		}
		rows[i].Count++
		if a.Severity != rows[i].Severity {
			c := Conflict{Category: a.Category, Kept: rows[i].Severity, Other: a.Severity, Alert: a.Number}
			if policy == ConflictError {
				return Summary{}, fmt.Errorf("%w: %q is both %s and %s (alert %d)",
					ErrSeverityConflict, c.Category, c.Kept, c.Other, c.Alert)
			}
			conflicts = append(conflicts, c)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return order.Rank(rows[i].Severity) < order.Rank(rows[j].Severity)
	})
	rows = append(rows, Total(rows, order))
	return Summary{Rows: rows, Conflicts: conflicts}, nil
}

// Total builds the trailing row: the number of distinct categories per level,
// in configured order, and the sum of all counts. Levels outside order are
// listed after the configured ones.
func Total(rows []types.SummaryRow, order types.SeverityOrder) types.SummaryRow {
	perLevel := map[string]int{}
	var extra []string
	sum := 0
	for _, r := range rows {
		sum += r.Count
		if perLevel[r.Severity] == 0 && !order.Contains(r.Severity) {
			extra = append(extra, r.Severity)
		}
		perLevel[r.Severity]++
	}
	var parts []string
	for _, level := range append(append([]string{}, order...), extra...) {
		if n := perLevel[level]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", level, n))
		}
	}
	return types.SummaryRow{Category: types.TotalLabel, Severity: strings.Join(parts, ", "), Count: sum}
}
