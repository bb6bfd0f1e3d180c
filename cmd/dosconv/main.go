// dosconv converts text between UTF-8 and single-byte DOS code pages on the
// command line, using the same resource files as the conversion engine.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
