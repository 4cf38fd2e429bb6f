// askdb – natural-language questions answered with SQL.
//
// Entry point: initializes the Cobra root command and launches the
// Bubble Tea REPL by default (no subcommand required).
package main

import (
	"os"

	"github.com/askdb/askdb/applog"
	"github.com/askdb/askdb/cmd"
)

func main() {
	err := cmd.Execute()
	if err != nil {
		applog.Error("%v", err)
	}
	applog.Close()
	if err != nil {
		os.Exit(1)
	}
}
