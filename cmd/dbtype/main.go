// Command dbtype converts values between their application and database form from the
// shell.
package main

import (
	"os"

	"github.com/uim-go/dbtype/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
