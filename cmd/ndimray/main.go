// Command ndimray is the CLI front-end for the n-dimensional ray tracer
// core: it wires scene-description flags to render.BlockingRenderer and
// writes the result as a PNG. Argument parsing, which spec.md §1 treats as
// an external collaborator, lives here, not in the core packages.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
