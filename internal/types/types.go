package types

// StateOpen is the only alert state kept by the pipeline.
const StateOpen = "open"

// TotalLabel is the category label of the synthetic trailing summary row.
const TotalLabel = "Total"

// Alert is one open code scanning finding flattened for reporting. The long-form
// fields are extracted from the rule's markdown help document.
type Alert struct {
	Number         int    `json:"number"`
	State          string `json:"state"`
	Category       string `json:"category"`
	Severity       string `json:"severity"`
	RuleID         string `json:"rule_id"`
	Summary        string `json:"summary"`
	Path           string `json:"path"`
	StartLine      int    `json:"start_line"`
	StartColumn    int    `json:"start_column"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	Example        string `json:"example,omitempty"`
	References     string `json:"references,omitempty"`
}

// AlertDetail is the body of GET /repos/{owner}/{repo}/code-scanning/alerts/{n}.
// Only the fields the report needs are decoded.
type AlertDetail struct {
	Number             int      `json:"number"`
	State              string   `json:"state"`
	Rule               Rule     `json:"rule"`
	MostRecentInstance Instance `json:"most_recent_instance"`
}

// Rule describes the query that produced an alert.
type Rule struct {
	ID                    string  `json:"id"`
	Description           string  `json:"description"`
	SecuritySeverityLevel *string `json:"security_severity_level"`
	Help                  string  `json:"help"`
}

// Severity returns the rule's security severity, or "" when GitHub sent none.
func (r Rule) Severity() string {
	if r.SecuritySeverityLevel == nil {
		return ""
	}
	return *r.SecuritySeverityLevel
}

type Instance struct {
	Message  Message  `json:"message"`
	Location Location `json:"location"`
}

type Message struct {
	Text string `json:"text"`
}

type Location struct {
	Path        string `json:"path"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	StartColumn int    `json:"start_column"`
	EndColumn   int    `json:"end_column"`
}

// SummaryRow is one line of the Summary sheet. The trailing total row carries
// TotalLabel as Category and a "level: n, ..." breakdown as Severity.
type SummaryRow struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

// SeverityOrder is the externally configured ordering of severity labels,
// most important first.
type SeverityOrder []string

// Rank returns the position of s in the order, or len(o) when s is unknown so
// that unknown levels sort last.
func (o SeverityOrder) Rank(s string) int {
	for i, v := range o {
		if v == s {
			return i
		}
	}
	return len(o)
}

// Contains reports whether s is one of the configured levels.
func (o SeverityOrder) Contains(s string) bool {
	return o.Rank(s) < len(o)
}
