// Command slides plans and simulates drift carousels.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/slides/cmd/slides/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
