// Package alerts turns code scanning alert details into flat report records.
package alerts

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/varalys/codeqlreport/internal/types"
)

// ErrMalformedHelp is returned when a rule help document lacks a title, a
// description or a Recommendation section.
var ErrMalformedHelp = errors.New("malformed rule help")

// Help holds the sections of a rule help document.
type Help struct {
	Title          string
	Description    string
	Recommendation string
	Example        string
	References     string
}

const (
	secDescription = iota
	secRecommendation
	secExample
	secReferences
)

var headings = map[string]int{
	"recommendation": secRecommendation,
	"example":        secExample,
	"references":     secReferences,
}

// Parse flattens d into an Alert. The long-form fields come from the rule's
// help markdown.
func Parse(d *types.AlertDetail) (types.Alert, error) {
	if d == nil {
		return types.Alert{}, errors.New("nil alert detail")
	}
	h, err := ParseHelp(d.Rule.Help)
	if err != nil {
		return types.Alert{}, fmt.Errorf("alert %d (%s): %w", d.Number, d.Rule.ID, err)
	}
	loc := d.MostRecentInstance.Location
	return types.Alert{
		Number:         d.Number,
		State:          d.State,
		Category:       d.Rule.Description,
		Severity:       d.Rule.Severity(),
		RuleID:         d.Rule.ID,
		Summary:        d.MostRecentInstance.Message.Text,
		Path:           loc.Path,
		StartLine:      loc.StartLine,
		StartColumn:    loc.StartColumn,
		Title:          h.Title,
		Description:    h.Description,
		Recommendation: h.Recommendation,
		Example:        h.Example,
		References:     h.References,
	}, nil
}

// ParseHelp splits a help document on its level-two headings. Headings inside
// fenced code blocks are body text.
func ParseHelp(doc string) (Help, error) {
	var (
		h       Help
		titled  bool
		fence   string
		current = secDescription
		seen    = map[int]bool{}
		bodies  = map[int]*strings.Builder{}
	)
	sc := bufio.NewScanner(strings.NewReader(strings.ReplaceAll(doc, "\r\n", "\n")))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !titled {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !strings.HasPrefix(line, "#") || strings.HasPrefix(line, "##") {
				return Help{}, fmt.Errorf("%w: missing title", ErrMalformedHelp)
			}
			h.Title = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			titled = true
			continue
		}
		if fence == "" {
			fence = fenceOpener(line)
		} else if closesFence(line, fence) {
			fence = ""
		}
		if fence == "" && strings.HasPrefix(line, "## ") {
			if sec, ok := headings[strings.ToLower(strings.TrimSpace(line[3:]))]; ok && !seen[sec] {
				current = sec
				seen[sec] = true
				continue
			}
		}
		b := bodies[current]
		if b == nil {
			b = &strings.Builder{}
			bodies[current] = b
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return Help{}, fmt.Errorf("%w: %v", ErrMalformedHelp, err)
	}
	text := func(sec int) string {
		if b := bodies[sec]; b != nil {
			return strings.TrimSpace(b.String())
		}
		return ""
	}
	switch {
	case h.Title == "":
		return Help{}, fmt.Errorf("%w: missing title", ErrMalformedHelp)
	case text(secDescription) == "":
		return Help{}, fmt.Errorf("%w: missing description", ErrMalformedHelp)
	case !seen[secRecommendation]:
		return Help{}, fmt.Errorf("%w: missing Recommendation section", ErrMalformedHelp)
	}
	h.Description = text(secDescription)
	h.Recommendation = text(secRecommendation)
	h.Example = text(secExample)
	h.References = text(secReferences)
	return h, nil
}

// fenceOpener returns the run of backticks or tildes that opens a fenced code
// block on line, or "" when line is not an opener. A backtick run followed by
// more backticks on the same line is an inline code span.
func fenceOpener(line string) string {
	t := strings.TrimSpace(line)
	if t == "" || (t[0] != '`' && t[0] != '~') {
		return ""
	}
	n := len(t) - len(strings.TrimLeft(t, t[:1]))
	if n < 3 {
		return ""
	}
	if t[0] == '`' && strings.Contains(t[n:], "`") {
		return ""
	}
	return t[:n]
}

// closesFence reports whether line is only fence characters of the same kind,
// at least as many as the opener.
func closesFence(line, fence string) bool {
	t := strings.TrimSpace(line)
	return len(t) >= len(fence) && strings.Trim(t, fence[:1]) == ""
}
