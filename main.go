// The main package for the vessel-scan executable.
package main

import (
	"github.com/r-uben/baltic-shipping/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
