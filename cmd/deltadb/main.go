// Command deltadb exercises the deltadb engine from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/deltadb/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
