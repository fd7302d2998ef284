// Package main provides the CLI entrypoint for tagmerge.
//
// tagmerge checks and queries tag declaration files:
//   - check validates the declarations and every schema's alias graph
//   - get and stream resolve merged views of a schema on an element
//   - dump prints the meta-tag tree of a schema
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
