// Command gobinsize breaks down a binary's on-disk and in-memory size by
// section, symbol, compile unit, or any other selected data source.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gobinsize: %v\n", err)
		os.Exit(1)
	}
}
