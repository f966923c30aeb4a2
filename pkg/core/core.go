package core

import (
	"context"

	"github.com/varalys/codeqlreport/internal/alerts"
	"github.com/varalys/codeqlreport/internal/engine"
	"github.com/varalys/codeqlreport/internal/report"
	"github.com/varalys/codeqlreport/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type (
	Alert          = types.Alert
	AlertDetail    = types.AlertDetail
	SummaryRow     = types.SummaryRow
	SeverityOrder  = types.SeverityOrder
	Config         = engine.Config
	Result         = engine.Result
	Gateway        = engine.Gateway
	Writer         = engine.Writer
	ConflictPolicy = report.ConflictPolicy
)

const (
	ConflictFirstSeen = report.ConflictFirstSeen
	ConflictError     = report.ConflictError
)

// Run is the stable entrypoint for other programs.
func Run(ctx context.Context, cfg Config, gw Gateway, w Writer) (Result, error) {
	return engine.Run(ctx, cfg, gw, w)
}

// Parse flattens a single alert detail.
func Parse(d *AlertDetail) (Alert, error) { return alerts.Parse(d) }

// Summarize aggregates alerts into summary rows ending with the Total row.
func Summarize(as []Alert, order SeverityOrder, policy ConflictPolicy) ([]SummaryRow, error) {
	s, err := report.Summarize(as, order, policy)
	if err != nil {
		return nil, err
	}
	return s.Rows, nil
}

// XLSXWriter returns the spreadsheet Writer used by the CLI.
func XLSXWriter() Writer { return report.XLSXWriter{} }
