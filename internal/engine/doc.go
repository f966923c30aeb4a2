// Package engine runs the report pipeline: it lists open alerts through a
// Gateway, flattens each alert detail, aggregates the summary and hands both
// to a Writer. This package is internal; external consumers should use the
// stable facade in pkg/core.
package engine
