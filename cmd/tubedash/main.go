// Package main is the entry point for the tubedash CLI.
package main

import (
	"os"

	"github.com/runger/tubedash/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
