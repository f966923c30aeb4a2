// Package core provides a small, stable facade over the internal report
// pipeline for external integrations. Callers supply their own Gateway (for
// example a recorded fixture) and Writer.
//
// Example:
//
//	res, err := core.Run(ctx, core.Config{Path: "report.xlsx", Order: order}, gw, core.XLSXWriter())
//	if err != nil { /* handle */ }
//	_ = core.MarshalReport(os.Stdout, core.NewReport("acme/web-app", res))
package core
