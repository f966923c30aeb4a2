package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/varalys/codeqlreport/internal/alerts"
	"github.com/varalys/codeqlreport/internal/report"
	"github.com/varalys/codeqlreport/internal/types"
)

type fakeGateway struct {
	ids     []int
	details map[int]*types.AlertDetail
	fetched []int
}

func (g *fakeGateway) ListOpenAlertIDs(context.Context) []int { return g.ids }

func (g *fakeGateway) GetAlertDetail(_ context.Context, id int) *types.AlertDetail {
	g.fetched = append(g.fetched, id)
	return g.details[id]
}

type recordingWriter struct {
	calls   int
	summary []types.SummaryRow
	details []types.Alert
}

func (w *recordingWriter) Write(_ string, summary []types.SummaryRow, details []types.Alert) error {
	w.calls++
	w.summary = summary
	w.details = details
	return nil
}

func detail(n int, category, severity, help string) *types.AlertDetail {
	return &types.AlertDetail{
		Number: n,
		State:  "open",
		Rule: types.Rule{
			ID:                    "rule/" + category,
			Description:           category,
			SecuritySeverityLevel: &severity,
			Help:                  help,
		},
		MostRecentInstance: types.Instance{Location: types.Location{Path: "main.go", StartLine: n}},
	}
}

const help = "# Title\nDescription.\n\n## Recommendation\nFix it.\n"

func TestRun_AssemblesReport(t *testing.T) {
	gw := &fakeGateway{
		ids: []int{3, 1, 2},
		details: map[int]*types.AlertDetail{
			1: detail(1, "A", "high", help),
			2: detail(2, "B", "low", help),
			3: detail(3, "A", "high", help),
		},
	}
	w := &recordingWriter{}
	var progress []int
	cfg := Config{
		Path:     "/reports/acme_report.xlsx",
		Order:    types.SeverityOrder{"high", "low"},
		Progress: func(done, _ int) { progress = append(progress, done) },
	}

	res, err := Run(context.Background(), cfg, gw, w)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, gw.fetched, "details follow discovery order")
	assert.Equal(t, []int{1, 2, 3}, progress)
	assert.Equal(t, 1, w.calls)
	assert.Len(t, w.details, 3)
	assert.Equal(t, 3, w.details[0].Number)
	assert.Equal(t, []types.SummaryRow{
		{Category: "A", Severity: "high", Count: 2},
		{Category: "B", Severity: "low", Count: 1},
		{Category: "Total", Severity: "high: 1, low: 1", Count: 3},
	}, w.summary)
	assert.Equal(t, cfg.Path, res.Path)
}

func TestRun_SkipsMissingDetail(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	gw := &fakeGateway{ids: []int{1, 2}, details: map[int]*types.AlertDetail{2: detail(2, "B", "low", help)}}
	w := &recordingWriter{}

	res, err := Run(context.Background(), Config{Path: "x.xlsx", Order: types.SeverityOrder{"low"}, Logger: zap.New(core)}, gw, w)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.Skipped)
	assert.Len(t, res.Alerts, 1)
	assert.Equal(t, 1, logs.FilterMessage("skipping alert without details").Len())
}

func TestRun_MalformedHelpWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acme_report.xlsx")
	gw := &fakeGateway{
		ids: []int{1, 2},
		details: map[int]*types.AlertDetail{
			1: detail(1, "A", "high", help),
			2: detail(2, "B", "high", "no heading at all"),
		},
	}
	_, err := Run(context.Background(), Config{Path: path, Order: types.SeverityOrder{"high"}}, gw, report.XLSXWriter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, alerts.ErrMalformedHelp)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no report may be written after a parse failure")
}

func TestRun_ConflictPolicy(t *testing.T) {
	gw := &fakeGateway{
		ids: []int{1, 2},
		details: map[int]*types.AlertDetail{
			1: detail(1, "A", "medium", help),
			2: detail(2, "A", "high", help),
		},
	}
	order := types.SeverityOrder{"high", "medium"}

	w := &recordingWriter{}
	_, err := Run(context.Background(), Config{Path: "r.xlsx", Order: order, Policy: report.ConflictError}, gw, w)
	assert.ErrorIs(t, err, report.ErrSeverityConflict)
	assert.Zero(t, w.calls)

	core, logs := observer.New(zapcore.WarnLevel)
	res, err := Run(context.Background(), Config{Path: "r.xlsx", Order: order, Logger: zap.New(core)}, gw, w)
	require.NoError(t, err)
	assert.Len(t, res.Conflicts, 1)
	assert.Equal(t, 1, logs.FilterMessage("category reported with more than one severity").Len())
}

func TestRun_EmptyPathSkipsWriter(t *testing.T) {
	gw := &fakeGateway{}
	w := &recordingWriter{}
	res, err := Run(context.Background(), Config{Order: types.SeverityOrder{"high"}}, gw, w)
	require.NoError(t, err)
	assert.Zero(t, w.calls)
	assert.Equal(t, []types.SummaryRow{{Category: "Total", Count: 0}}, res.Summary)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gw := &fakeGateway{ids: []int{1}, details: map[int]*types.AlertDetail{1: detail(1, "A", "high", help)}}
	w := &recordingWriter{}
	_, err := Run(ctx, Config{Path: "r.xlsx"}, gw, w)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, w.calls)
}
