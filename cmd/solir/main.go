// Command solir builds a linked IR from solc standard-JSON output.
package main

import (
	"os"

	"github.com/roach88/solir/internal/cli"
)

func main() {
	// Commands report their own errors; cobra prints usage errors.
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
