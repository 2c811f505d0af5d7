package main

import (
	"os"

	"github.com/spektr-org/rekap/internal/cli"
)

// ============================================================================
// REKAP CLI — RFQ recap reports from the command line
// ============================================================================

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
