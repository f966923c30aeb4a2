package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/varalys/codeqlreport/internal/alerts"
	"github.com/varalys/codeqlreport/internal/logging"
	"github.com/varalys/codeqlreport/internal/report"
	"github.com/varalys/codeqlreport/internal/types"
)

// Gateway is the subset of the repository API the pipeline reads from.
type Gateway interface {
	ListOpenAlertIDs(ctx context.Context) []int
	GetAlertDetail(ctx context.Context, id int) *types.AlertDetail
}

// Writer persists a finished report.
type Writer interface {
	Write(path string, summary []types.SummaryRow, details []types.Alert) error
}

// Config controls a pipeline run.
type Config struct {
	// Path is the report file. An empty Path skips writing.
	Path     string
	Order    types.SeverityOrder
	Policy   report.ConflictPolicy
	Logger   *zap.Logger
	Progress func(done, total int)
}

// Result contains the assembled report and basic run statistics.
type Result struct {
	Alerts    []types.Alert
	Summary   []types.SummaryRow
	Conflicts []report.Conflict
	// Skipped lists alert numbers whose detail could not be fetched.
	Skipped  []int
	Path     string
	Duration time.Duration
}

// Run fetches, parses and aggregates every open alert, then writes the report.
// Nothing is written unless every alert parsed and the summary was built.
func Run(ctx context.Context, cfg Config, gw Gateway, w Writer) (Result, error) {
	log := logging.OrNop(cfg.Logger)
	started := time.Now()
	var result Result

	ids := gw.ListOpenAlertIDs(ctx)
	log.Info("retrieved open alerts", zap.Int("count", len(ids)))

	details := make([]types.Alert, 0, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		d := gw.GetAlertDetail(ctx, id)
		if cfg.Progress != nil {
			cfg.Progress(i+1, len(ids))
		}
		if d == nil {
			log.Warn("skipping alert without details", zap.Int("alert", id))
			result.Skipped = append(result.Skipped, id)
			continue
		}
		a, err := alerts.Parse(d)
		if err != nil {
			return result, err
		}
		details = append(details, a)
	}

	sum, err := report.Summarize(details, cfg.Order, cfg.Policy)
	if err != nil {
		return result, err
	}
	for _, c := range sum.Conflicts {
		log.Warn("category reported with more than one severity",
			zap.String("category", c.Category), zap.String("kept", c.Kept),
			zap.String("other", c.Other), zap.Int("alert", c.Alert))
	}
	result.Alerts = details
	result.Summary = sum.Rows
	result.Conflicts = sum.Conflicts

	if cfg.Path != "" {
		if w == nil {
			return result, fmt.Errorf("no writer for %s", cfg.Path)
		}
		if err := w.Write(cfg.Path, sum.Rows, details); err != nil {
			return result, fmt.Errorf("write report: %w", err)
		}
		result.Path = cfg.Path
		log.Info("report written", zap.String("path", cfg.Path), zap.Int("alerts", len(details)))
	}
	result.Duration = time.Since(started)
	return result, nil
}
