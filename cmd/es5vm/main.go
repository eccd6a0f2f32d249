// Command es5vm is the CLI front end for the ES5 interpreter core: run,
// parse, lex, and conformance subcommands, wired with cobra the way the
// teacher's cmd/dwscript binary is.
package main

import (
	"os"

	"github.com/mras0/mjs-sub001/cmd/es5vm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
