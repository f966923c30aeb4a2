package codeqlreport

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/varalys/codeqlreport/internal/config"
	"github.com/varalys/codeqlreport/internal/engine"
	"github.com/varalys/codeqlreport/internal/report"
	"github.com/varalys/codeqlreport/internal/types"
	"github.com/varalys/codeqlreport/pkg/core"
)

var (
	flagReportJSON    bool
	flagReportNoTable bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export open code scanning alerts to a spreadsheet",
		Args:  cobra.NoArgs,
		RunE:  runReport,
	}
	cmd.PersistentFlags().BoolVar(&flagReportJSON, "json", false, "print the report as JSON instead of a table")
	cmd.Flags().BoolVar(&flagReportNoTable, "no-table", false, "do not print the summary table")

	show := &cobra.Command{
		Use:   "show <file>",
		Short: "Print the summary of an existing report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := report.ReadSummary(args[0])
			if err != nil {
				return err
			}
			if flagReportJSON {
				details, err := report.ReadDetails(args[0])
				if err != nil {
					return err
				}
				return core.MarshalReport(cmd.OutOrStdout(), core.NewReport("", engine.Result{Summary: rows, Alerts: details, Path: args[0]}))
			}
			return report.PrintSummary(cmd.OutOrStdout(), rows, report.PrintOptions{NoColor: flagNoColor})
		},
	}
	cmd.AddCommand(show)
	rootCmd.AddCommand(cmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer func() { _ = sess.log.Sync() }()
	s := sess.settings

	order, err := s.List(config.KeySeverityOrder)
	if err != nil {
		return err
	}
	toReport, err := s.List(config.KeySeverityToReport)
	if err != nil {
		return err
	}
	policy, err := report.ParseConflictPolicy(s.StringOr(config.KeySeverityConflict, "first"))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", config.ErrInvalidKey, config.KeySeverityConflict, err)
	}
	dir, err := s.Dir(config.KeyOutputDirectory)
	if err != nil {
		return err
	}
	file, err := s.String(config.KeyOutputFile)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, report.FileName(sess.repo, file))

	ctx := cmd.Context()
	gw, err := sess.gateway(ctx, toReport)
	if err != nil {
		return err
	}
	sess.log.Info("collecting code scanning alerts", zap.String("repo", gw.FullName()))
	res, err := engine.Run(ctx, engine.Config{
		Path:   path,
		Order:  types.SeverityOrder(order),
		Policy: policy,
		Logger: sess.log,
		Progress: func(done, total int) {
			sess.log.Debug("fetched alert details", zap.Int("done", done), zap.Int("total", total))
		},
	}, gw, report.XLSXWriter{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case flagReportJSON:
		return core.MarshalReport(out, core.NewReport(gw.FullName(), res))
	case flagReportNoTable:
		return nil
	default:
		return report.PrintSummary(out, res.Summary, report.PrintOptions{NoColor: flagNoColor, Path: res.Path})
	}
}
