package core

import (
	"encoding/json"
	"io"
)

// Report is the JSON form of a run.
type Report struct {
	Repository string       `json:"repository,omitempty"`
	Path       string       `json:"path,omitempty"`
	Summary    []SummaryRow `json:"summary"`
	Alerts     []Alert      `json:"alerts"`
	Skipped    []int        `json:"skipped,omitempty"`
}

// NewReport builds the JSON form of res for repository.
func NewReport(repository string, res Result) Report {
	r := Report{
		Repository: repository,
		Path:       res.Path,
		Summary:    res.Summary,
		Alerts:     res.Alerts,
		Skipped:    res.Skipped,
	}
	if r.Summary == nil {
		r.Summary = []SummaryRow{}
	}
	if r.Alerts == nil {
		r.Alerts = []Alert{}
	}
	return r
}

// MarshalReport pretty-prints a report as JSON for humans or pipelines.
func MarshalReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// UnmarshalReport decodes report JSON, useful for ingestion tests.
func UnmarshalReport(r io.Reader) (Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return Report{}, err
	}
	return rep, nil
}
