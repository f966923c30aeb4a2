package main

import "github.com/varalys/codeqlreport/cmd/codeqlreport"

func main() { codeqlreport.Execute() }
