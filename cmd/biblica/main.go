// Command biblica is the entry point for the Biblica Scripture assistant.
// It provides a CLI (via Cobra), an interactive chat TUI, and an HTTP
// server exposing the same retrieval-grounded answering pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/biblica-labs/biblica-go/cmd/biblica/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
