// Command medley builds and queries fuzzy-match indexes over record
// sets, per the directive DSL described in the project's design.
package main

import (
	"fmt"
	"os"

	"github.com/hpcc-systems/Medley/cmd/medley/commands"
	"github.com/hpcc-systems/Medley/logger"
)

func main() {
	root := commands.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "medley:", err)
		logger.Cleanup()
		os.Exit(1)
	}
	logger.Cleanup()
}
