// Command cortex-explore is a small interactive consumer of the resilient
// client: enough to list headsets, watch a stream, and drive a recording
// from the terminal without writing Go.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
