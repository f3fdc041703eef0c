// Command ruler applies the rules under .ruler/ to every configured AI
// coding agent.
package main

import (
	"os"

	"ruler/internal/cli"
)

// version is set via ldflags at build time.
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
