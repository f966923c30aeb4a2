// Package codeqlreport provides the command-line interface for codeqlreport.
// It configures subcommands (report, setup, template, config, etc.), parses
// flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/varalys/codeqlreport/cmd/codeqlreport"
//	func main() { codeqlreport.Execute() }
package codeqlreport
