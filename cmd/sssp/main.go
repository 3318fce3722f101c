// Command sssp installs and lists SSSP pseudopotential families.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/roach88/sssp/internal/cli"
)

func main() {
	// Variables from .env fill in the environment but never override it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "sssp: load .env: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}

	err := cli.NewRootCommand().Execute()
	if err != nil {
		var exitErr *cli.ExitError
		// ExitErrors were already reported by the formatter.
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "sssp: %v\n", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
