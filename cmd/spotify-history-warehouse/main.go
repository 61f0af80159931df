// Command spotify-history-warehouse builds a listening warehouse from a
// Spotify streaming history export.
package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/justestif/spotify-history-warehouse/internal/cli"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return cli.Run(version)
}
