package main

import (
	"os"

	"github.com/orangecx/cxpipe/cmd/cxpipe/commands"
)

// main is the entry point for the cxpipe CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
