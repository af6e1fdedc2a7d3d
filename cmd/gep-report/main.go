package main

import (
	"fmt"
	"os"

	"gep-report/cmd/gep-report/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
