// Package main is the entry point for the Genie CLI application.
// It provides natural-language querying of a Databricks Genie space
// from the terminal.
package main

import (
	"genie/cli/cmd"
)

func main() {
	cmd.Execute()
}
