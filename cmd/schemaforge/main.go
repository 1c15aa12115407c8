// Command schemaforge is the CLI entrypoint; all behavior lives in
// internal/cli so it stays testable without exec'ing a binary.
package main

import (
	"os"

	"github.com/schemaforge/schemaforge/internal/cli"
)

func main() {
	cli.Execute(os.Args[1:]...)
}
